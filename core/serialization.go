// Copyright 2026 Casewise Labs
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


package core

import (
	"sort"
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the stored record types. The record set is small enough
// that the codecs are written by hand against the mus-go primitives instead
// of generated. Field order is fixed; map entries are written in sorted key
// order so identical records always serialize to identical bytes.

// IDMUS serializes ID values.
var IDMUS = idMUS{}

type idMUS struct{}

var _ mus.Serializer[ID] = idMUS{}

func (idMUS) Marshal(id ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (id ID, n int, err error) {
	num, n, err := varint.Uint64.Unmarshal(bs)
	return ID(num), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

// timestamps are stored as microseconds since the Unix epoch, UTC.

func marshalTime(t time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (t time.Time, n int, err error) {
	num, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	return time.UnixMicro(num).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func marshalFloat32Slice(vs []float32, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(len(vs)), bs)
	for _, v := range vs {
		n += raw.Float32.Marshal(v, bs[n:])
	}
	return n
}

func unmarshalFloat32Slice(bs []byte) (vs []float32, n int, err error) {
	length, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	if length == 0 {
		return nil, n, nil
	}
	vs = make([]float32, length)
	for i := range vs {
		var n1 int
		vs[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return vs, n, nil
}

func sizeFloat32Slice(vs []float32) (size int) {
	size = varint.Uint64.Size(uint64(len(vs)))
	for _, v := range vs {
		size += raw.Float32.Size(v)
	}
	return size
}

func marshalStringSlice(vs []string, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(len(vs)), bs)
	for _, v := range vs {
		n += ord.String.Marshal(v, bs[n:])
	}
	return n
}

func unmarshalStringSlice(bs []byte) (vs []string, n int, err error) {
	length, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	if length == 0 {
		return nil, n, nil
	}
	vs = make([]string, length)
	for i := range vs {
		var n1 int
		vs[i], n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return vs, n, nil
}

func sizeStringSlice(vs []string) (size int) {
	size = varint.Uint64.Size(uint64(len(vs)))
	for _, v := range vs {
		size += ord.String.Size(v)
	}
	return size
}

// SectionMUS serializes Section values.
var SectionMUS = sectionMUS{}

type sectionMUS struct{}

var _ mus.Serializer[Section] = sectionMUS{}

func (sectionMUS) Marshal(s Section, bs []byte) (n int) {
	n = IDMUS.Marshal(s.Id, bs)
	n += ord.String.Marshal(s.Text, bs[n:])
	n += varint.Int.Marshal(int(s.Type), bs[n:])
	n += marshalFloat32Slice(s.Vector, bs[n:])
	n += marshalTime(s.InsertedAt, bs[n:])
	n += marshalTime(s.UpdatedAt, bs[n:])
	return n
}

func (sectionMUS) Unmarshal(bs []byte) (s Section, n int, err error) {
	var n1 int
	if s.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if s.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return s, n + n1, err
	}
	n += n1
	var typ int
	if typ, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return s, n + n1, err
	}
	s.Type = SectionType(typ)
	n += n1
	if s.Vector, n1, err = unmarshalFloat32Slice(bs[n:]); err != nil {
		return s, n + n1, err
	}
	n += n1
	if s.InsertedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return s, n + n1, err
	}
	n += n1
	if s.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return s, n + n1, err
	}
	n += n1
	return s, n, nil
}

func (sectionMUS) Size(s Section) (size int) {
	size = IDMUS.Size(s.Id)
	size += ord.String.Size(s.Text)
	size += varint.Int.Size(int(s.Type))
	size += sizeFloat32Slice(s.Vector)
	size += sizeTime(s.InsertedAt)
	size += sizeTime(s.UpdatedAt)
	return size
}

func (m sectionMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = m.Unmarshal(bs)
	return n, err
}

// ConceptMUS serializes Concept values.
var ConceptMUS = conceptMUS{}

type conceptMUS struct{}

var _ mus.Serializer[Concept] = conceptMUS{}

func (conceptMUS) Marshal(c Concept, bs []byte) (n int) {
	n = IDMUS.Marshal(c.Id, bs)
	n += ord.String.Marshal(c.URI, bs[n:])
	n += ord.String.Marshal(c.Label, bs[n:])
	n += varint.Int.Marshal(int(c.Kind), bs[n:])
	n += ord.String.Marshal(c.ParentURI, bs[n:])
	n += marshalStringSlice(c.MatchingTerms, bs[n:])
	n += varint.Uint64.Marshal(uint64(len(c.Affinities)), bs[n:])
	for _, a := range c.Affinities {
		n += varint.Int.Marshal(int(a), bs[n:])
	}
	n += marshalFloat32Slice(c.Vector, bs[n:])
	n += marshalTime(c.InsertedAt, bs[n:])
	n += marshalTime(c.UpdatedAt, bs[n:])
	return n
}

func (conceptMUS) Unmarshal(bs []byte) (c Concept, n int, err error) {
	var n1 int
	if c.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if c.URI, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Label, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	var kind int
	if kind, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	c.Kind = ConceptKind(kind)
	n += n1
	if c.ParentURI, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.MatchingTerms, n1, err = unmarshalStringSlice(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	var count uint64
	if count, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if count > 0 {
		c.Affinities = make([]SectionType, count)
		for i := range c.Affinities {
			var a int
			if a, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
				return c, n + n1, err
			}
			c.Affinities[i] = SectionType(a)
			n += n1
		}
	}
	if c.Vector, n1, err = unmarshalFloat32Slice(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.InsertedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	return c, n, nil
}

func (conceptMUS) Size(c Concept) (size int) {
	size = IDMUS.Size(c.Id)
	size += ord.String.Size(c.URI)
	size += ord.String.Size(c.Label)
	size += varint.Int.Size(int(c.Kind))
	size += ord.String.Size(c.ParentURI)
	size += sizeStringSlice(c.MatchingTerms)
	size += varint.Uint64.Size(uint64(len(c.Affinities)))
	for _, a := range c.Affinities {
		size += varint.Int.Size(int(a))
	}
	size += sizeFloat32Slice(c.Vector)
	size += sizeTime(c.InsertedAt)
	size += sizeTime(c.UpdatedAt)
	return size
}

func (m conceptMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = m.Unmarshal(bs)
	return n, err
}

// AssociationMUS serializes Association values.
var AssociationMUS = associationMUS{}

type associationMUS struct{}

var _ mus.Serializer[Association] = associationMUS{}

func (associationMUS) Marshal(a Association, bs []byte) (n int) {
	n = IDMUS.Marshal(a.SectionId, bs)
	n += IDMUS.Marshal(a.ConceptId, bs[n:])
	n += ord.String.Marshal(a.ConceptURI, bs[n:])
	n += raw.Float64.Marshal(a.SemanticSimilarity, bs[n:])
	n += raw.Float64.Marshal(a.KeywordOverlap, bs[n:])
	n += raw.Float64.Marshal(a.StructuralRelevance, bs[n:])
	n += ord.Bool.Marshal(a.LLMAgreement != nil, bs[n:])
	if a.LLMAgreement != nil {
		n += raw.Float64.Marshal(*a.LLMAgreement, bs[n:])
	}
	n += raw.Float64.Marshal(a.OverallConfidence, bs[n:])
	n += marshalReasoning(a.Reasoning, bs[n:])
	n += ord.String.Marshal(a.Method, bs[n:])
	n += marshalTime(a.CreatedAt, bs[n:])
	n += marshalTime(a.UpdatedAt, bs[n:])
	return n
}

func (associationMUS) Unmarshal(bs []byte) (a Association, n int, err error) {
	var n1 int
	if a.SectionId, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if a.ConceptId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.ConceptURI, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.SemanticSimilarity, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.KeywordOverlap, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.StructuralRelevance, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	var present bool
	if present, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if present {
		var agreement float64
		if agreement, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
			return a, n + n1, err
		}
		a.LLMAgreement = &agreement
		n += n1
	}
	if a.OverallConfidence, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Reasoning, n1, err = unmarshalReasoning(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Method, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	return a, n, nil
}

func (associationMUS) Size(a Association) (size int) {
	size = IDMUS.Size(a.SectionId)
	size += IDMUS.Size(a.ConceptId)
	size += ord.String.Size(a.ConceptURI)
	size += raw.Float64.Size(a.SemanticSimilarity)
	size += raw.Float64.Size(a.KeywordOverlap)
	size += raw.Float64.Size(a.StructuralRelevance)
	size += ord.Bool.Size(a.LLMAgreement != nil)
	if a.LLMAgreement != nil {
		size += raw.Float64.Size(*a.LLMAgreement)
	}
	size += raw.Float64.Size(a.OverallConfidence)
	size += sizeReasoning(a.Reasoning)
	size += ord.String.Size(a.Method)
	size += sizeTime(a.CreatedAt)
	size += sizeTime(a.UpdatedAt)
	return size
}

func (m associationMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = m.Unmarshal(bs)
	return n, err
}

// Contribution entries are written in sorted key order so that recomputing an
// association with identical inputs stores identical bytes.
func marshalReasoning(r Reasoning, bs []byte) (n int) {
	n = ord.String.Marshal(r.DominantMetric, bs)
	keys := make([]string, 0, len(r.Contributions))
	for k := range r.Contributions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	n += varint.Uint64.Marshal(uint64(len(keys)), bs[n:])
	for _, k := range keys {
		n += ord.String.Marshal(k, bs[n:])
		n += raw.Float64.Marshal(r.Contributions[k], bs[n:])
	}
	n += ord.String.Marshal(r.Summary, bs[n:])
	return n
}

func unmarshalReasoning(bs []byte) (r Reasoning, n int, err error) {
	var n1 int
	if r.DominantMetric, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	var count uint64
	if count, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	if count > 0 {
		r.Contributions = make(map[string]float64, count)
		for i := uint64(0); i < count; i++ {
			var key string
			if key, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
				return r, n + n1, err
			}
			n += n1
			var val float64
			if val, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
				return r, n + n1, err
			}
			n += n1
			r.Contributions[key] = val
		}
	}
	if r.Summary, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	return r, n, nil
}

func sizeReasoning(r Reasoning) (size int) {
	size = ord.String.Size(r.DominantMetric)
	size += varint.Uint64.Size(uint64(len(r.Contributions)))
	for k, v := range r.Contributions {
		size += ord.String.Size(k)
		size += raw.Float64.Size(v)
	}
	size += ord.String.Size(r.Summary)
	return size
}
