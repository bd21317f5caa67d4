// Code generated by musgen-go. DO NOT EDIT.

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

var (
	slicebBhNPLz2lBiΔAIΔQRSTdUQΞΞ = ord.NewSliceSer[float32](varint.Float32)
)

var DocumentStatusMUS = documentStatusMUS{}

type documentStatusMUS struct{}

func (s documentStatusMUS) Marshal(v DocumentStatus, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s documentStatusMUS) Unmarshal(bs []byte) (v DocumentStatus, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = DocumentStatus(tmp)
	return
}

func (s documentStatusMUS) Size(v DocumentStatus) (size int) {
	return varint.Int.Size(int(v))
}

func (s documentStatusMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var IDMUS = iDMUS{}

type iDMUS struct{}

func (s iDMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s iDMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ID(tmp)
	return
}

func (s iDMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s iDMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

var DocumentMUS = documentMUS{}

type documentMUS struct{}

func (s documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Filename, bs[n:])
	n += ord.String.Marshal(v.FileType, bs[n:])
	n += ord.String.Marshal(v.DeviceType, bs[n:])
	n += ord.String.Marshal(v.Brand, bs[n:])
	n += ord.String.Marshal(v.Model, bs[n:])
	n += DocumentStatusMUS.Marshal(v.Status, bs[n:])
	n += ord.String.Marshal(v.ErrorMessage, bs[n:])
	n += varint.Int.Marshal(v.ChunksCount, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.UploadedAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.ProcessedAt, bs[n:])
}

func (s documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Filename, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.FileType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.DeviceType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Brand, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Model, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Status, n1, err = DocumentStatusMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ErrorMessage, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ChunksCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UploadedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ProcessedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s documentMUS) Size(v Document) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Filename)
	size += ord.String.Size(v.FileType)
	size += ord.String.Size(v.DeviceType)
	size += ord.String.Size(v.Brand)
	size += ord.String.Size(v.Model)
	size += DocumentStatusMUS.Size(v.Status)
	size += ord.String.Size(v.ErrorMessage)
	size += varint.Int.Size(v.ChunksCount)
	size += raw.TimeUnixMicro.Size(v.UploadedAt)
	return size + raw.TimeUnixMicro.Size(v.ProcessedAt)
}

func (s documentMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = DocumentStatusMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var ChunkRecordMUS = chunkRecordMUS{}

type chunkRecordMUS struct{}

func (s chunkRecordMUS) Marshal(v ChunkRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.DocumentId, bs[n:])
	n += varint.Int.Marshal(v.ChunkIndex, bs[n:])
	n += varint.Int.Marshal(v.TotalChunks, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += slicebBhNPLz2lBiΔAIΔQRSTdUQΞΞ.Marshal(v.Vector, bs[n:])
	n += ord.String.Marshal(v.DeviceType, bs[n:])
	n += ord.String.Marshal(v.Brand, bs[n:])
	n += ord.String.Marshal(v.Model, bs[n:])
	n += ord.String.Marshal(v.SourceFile, bs[n:])
	n += ord.String.Marshal(v.SectionType, bs[n:])
	n += ord.String.Marshal(v.DetectedModel, bs[n:])
	n += varint.Int.Marshal(v.PageNumber, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
}

func (s chunkRecordMUS) Unmarshal(bs []byte) (v ChunkRecord, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.DocumentId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ChunkIndex, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.TotalChunks, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = slicebBhNPLz2lBiΔAIΔQRSTdUQΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.DeviceType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Brand, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Model, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SourceFile, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SectionType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.DetectedModel, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.PageNumber, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s chunkRecordMUS) Size(v ChunkRecord) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.DocumentId)
	size += varint.Int.Size(v.ChunkIndex)
	size += varint.Int.Size(v.TotalChunks)
	size += ord.String.Size(v.Text)
	size += slicebBhNPLz2lBiΔAIΔQRSTdUQΞΞ.Size(v.Vector)
	size += ord.String.Size(v.DeviceType)
	size += ord.String.Size(v.Brand)
	size += ord.String.Size(v.Model)
	size += ord.String.Size(v.SourceFile)
	size += ord.String.Size(v.SectionType)
	size += ord.String.Size(v.DetectedModel)
	size += varint.Int.Size(v.PageNumber)
	return size + raw.TimeUnixMicro.Size(v.InsertedAt)
}

func (s chunkRecordMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = slicebBhNPLz2lBiΔAIΔQRSTdUQΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}
