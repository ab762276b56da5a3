// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/enrichit/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// MarshalStatusRecord serializes a StatusRecord to bytes.
// Timestamps are stored as Unix microseconds.
func MarshalStatusRecord(record *core.StatusRecord) []byte {
	buf := make([]byte, sizeStatusRecord(record))
	marshalStatusRecord(record, buf)
	return buf
}

// UnmarshalStatusRecord deserializes a StatusRecord from bytes.
func UnmarshalStatusRecord(data []byte) (*core.StatusRecord, error) {
	record, err := unmarshalStatusRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return record, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func sizeStrings(values []string) int {
	size := varint.Int.Size(len(values))
	for _, v := range values {
		size += ord.String.Size(v)
	}
	return size
}

func marshalStrings(values []string, bs []byte) int {
	n := varint.Int.Marshal(len(values), bs)
	for _, v := range values {
		n += ord.String.Marshal(v, bs[n:])
	}
	return n
}

func unmarshalStrings(bs []byte) ([]string, int, error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 || length > len(bs) {
		return nil, n, ErrTruncatedData
	}
	values := make([]string, 0, length)
	for range length {
		v, m, err := ord.String.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return nil, n, err
		}
		values = append(values, v)
	}
	return values, n, nil
}

func sizeStatusEvent(e *core.StatusEvent) int {
	return ord.String.Size(e.DocumentKey) +
		ord.String.Size(e.Message) +
		ord.String.Size(string(e.Classification)) +
		ord.String.Size(string(e.State)) +
		sizeTime(e.Timestamp)
}

func marshalStatusEvent(e *core.StatusEvent, bs []byte) int {
	n := ord.String.Marshal(e.DocumentKey, bs)
	n += ord.String.Marshal(e.Message, bs[n:])
	n += ord.String.Marshal(string(e.Classification), bs[n:])
	n += ord.String.Marshal(string(e.State), bs[n:])
	n += marshalTime(e.Timestamp, bs[n:])
	return n
}

func unmarshalStatusEvent(bs []byte) (core.StatusEvent, int, error) {
	var (
		e   core.StatusEvent
		s   string
		n   int
		m   int
		err error
	)
	if e.DocumentKey, m, err = ord.String.Unmarshal(bs); err != nil {
		return e, n + m, err
	}
	n += m
	if e.Message, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	if s, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	e.Classification = core.Classification(s)
	n += m
	if s, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	e.State = core.State(s)
	n += m
	if e.Timestamp, m, err = unmarshalTime(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	return e, n, nil
}

func sizeStatusRecord(r *core.StatusRecord) int {
	size := ord.String.Size(r.DocumentKey) +
		ord.String.Size(r.FileName) +
		ord.String.Size(string(r.State)) +
		ord.String.Size(r.StateDescription) +
		sizeStrings(r.Tags) +
		varint.Int.Size(len(r.Events)) +
		sizeTime(r.StartedAt) +
		sizeTime(r.UpdatedAt)
	for i := range r.Events {
		size += sizeStatusEvent(&r.Events[i])
	}
	return size
}

func marshalStatusRecord(r *core.StatusRecord, bs []byte) int {
	n := ord.String.Marshal(r.DocumentKey, bs)
	n += ord.String.Marshal(r.FileName, bs[n:])
	n += ord.String.Marshal(string(r.State), bs[n:])
	n += ord.String.Marshal(r.StateDescription, bs[n:])
	n += marshalStrings(r.Tags, bs[n:])
	n += varint.Int.Marshal(len(r.Events), bs[n:])
	for i := range r.Events {
		n += marshalStatusEvent(&r.Events[i], bs[n:])
	}
	n += marshalTime(r.StartedAt, bs[n:])
	n += marshalTime(r.UpdatedAt, bs[n:])
	return n
}

func unmarshalStatusRecord(bs []byte) (*core.StatusRecord, error) {
	var (
		r   core.StatusRecord
		s   string
		n   int
		m   int
		err error
	)
	if r.DocumentKey, m, err = ord.String.Unmarshal(bs); err != nil {
		return nil, err
	}
	n += m
	if r.FileName, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return nil, err
	}
	n += m
	if s, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return nil, err
	}
	r.State = core.State(s)
	n += m
	if r.StateDescription, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return nil, err
	}
	n += m
	if r.Tags, m, err = unmarshalStrings(bs[n:]); err != nil {
		return nil, err
	}
	n += m

	count, m, err := varint.Int.Unmarshal(bs[n:])
	if err != nil {
		return nil, err
	}
	n += m
	if count < 0 || count > len(bs) {
		return nil, ErrTruncatedData
	}
	r.Events = make([]core.StatusEvent, 0, count)
	for range count {
		e, m, err := unmarshalStatusEvent(bs[n:])
		if err != nil {
			return nil, err
		}
		n += m
		r.Events = append(r.Events, e)
	}

	if r.StartedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return nil, err
	}
	n += m
	if r.UpdatedAt, _, err = unmarshalTime(bs[n:]); err != nil {
		return nil, err
	}
	return &r, nil
}
