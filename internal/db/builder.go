package db

import (
	"strconv"
	"strings"
)

// IndexBuilder is a fluent builder for index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an index definition for a single-node topology.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{
		def: IndexDefinition{
			Name:     name,
			Settings: IndexSettings{Shards: 1},
		},
	}
}

// Numeric adds a float field.
func (b *IndexBuilder) Numeric(name string) *IndexBuilder {
	return b.field(IndexField{Name: name, Type: IndexFieldNumeric})
}

// Integer adds an integer field.
func (b *IndexBuilder) Integer(name string) *IndexBuilder {
	return b.field(IndexField{Name: name, Type: IndexFieldInteger})
}

// Tag adds keyword fields.
func (b *IndexBuilder) Tag(names ...string) *IndexBuilder {
	for _, n := range names {
		b.field(IndexField{Name: n, Type: IndexFieldTag})
	}
	return b
}

// TagCaseSensitive adds keyword fields matched with exact case.
func (b *IndexBuilder) TagCaseSensitive(names ...string) *IndexBuilder {
	for _, n := range names {
		b.field(IndexField{Name: n, Type: IndexFieldTag, TagCaseSensitive: true})
	}
	return b
}

// Text adds a full-text field.
func (b *IndexBuilder) Text(name string) *IndexBuilder {
	return b.field(IndexField{Name: name, Type: IndexFieldText})
}

// Date adds a timestamp field.
func (b *IndexBuilder) Date(name string) *IndexBuilder {
	return b.field(IndexField{Name: name, Type: IndexFieldDate})
}

// VectorHNSW adds the vector field with the HNSW algorithm.
func (b *IndexBuilder) VectorHNSW(dim int, distance DistanceMetric, m, efConstruct int) *IndexBuilder {
	return b.field(IndexField{
		Name:              VectorField,
		Type:              IndexFieldVector,
		VectorAlgo:        VectorHNSW,
		VectorDim:         dim,
		VectorDistance:    distance,
		VectorM:           m,
		VectorEFConstruct: efConstruct,
	})
}

// Shards sets the shard count.
func (b *IndexBuilder) Shards(n int) *IndexBuilder {
	b.def.Settings.Shards = n
	return b
}

// Replicas sets the replica count.
func (b *IndexBuilder) Replicas(n int) *IndexBuilder {
	b.def.Settings.Replicas = n
	return b
}

// EFRuntime fixes the search-time HNSW candidate list size.
func (b *IndexBuilder) EFRuntime(n int) *IndexBuilder {
	b.def.Settings.EFRuntime = n
	return b
}

func (b *IndexBuilder) field(f IndexField) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	def.Fields = append([]IndexField(nil), b.def.Fields...)
	return &def, nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// String returns a compact debug representation of the schema.
func (idx *IndexDefinition) String() string {
	parts := []string{"INDEX", idx.Name, "SCHEMA"}
	for i := range idx.Fields {
		f := &idx.Fields[i]
		parts = append(parts, f.Name, strings.ToUpper(f.Type.String()))
		if f.Type == IndexFieldVector {
			parts = append(parts, string(f.VectorAlgo), strconv.Itoa(f.VectorDim), string(f.VectorDistance))
		}
	}
	parts = append(parts,
		"SHARDS", strconv.Itoa(idx.Settings.Shards),
		"REPLICAS", strconv.Itoa(idx.Settings.Replicas),
		"EF_RUNTIME", strconv.Itoa(idx.Settings.EFRuntime),
	)
	return strings.Join(parts, " ")
}
