package schema

import (
	"testing"

	"github.com/koustreak/schemadiff/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func mustField(t *testing.T, spec FieldSpec) FieldInfo {
	t.Helper()
	f, err := NewFieldInfo(spec)
	require.NoError(t, err)
	return f
}

func TestIndex(t *testing.T) {
	idx := NewIndex(
		NewViewInfo("Orders_V", "select 1"),
		NewViewInfo("users_v", "select 2"),
	)

	assert.Equal(t, 2, idx.Len())
	assert.True(t, idx.Contains("orders_v"))
	assert.True(t, idx.Contains("ORDERS_V"))
	assert.False(t, idx.Contains("missing"))

	v, ok := idx.Get("USERS_V")
	require.True(t, ok)
	assert.Equal(t, "users_v", v.Name())

	names := []string{}
	for _, it := range idx.Items() {
		names = append(names, it.Name())
	}
	assert.Equal(t, []string{"Orders_V", "users_v"}, names)
}

func TestIndex_DuplicateLastWriterWins(t *testing.T) {
	idx := NewIndex[ViewInfo]()
	idx.Add(NewViewInfo("v", "first"))
	idx.Add(NewViewInfo("V", "second"))

	assert.Equal(t, 2, idx.Len())
	v, ok := idx.Get("v")
	require.True(t, ok)
	assert.Equal(t, "second", v.CreateStatement())
}

func TestIndex_NilAndZero(t *testing.T) {
	var nilIdx *Index[TableInfo]
	assert.False(t, nilIdx.Contains("x"))
	assert.Equal(t, 0, nilIdx.Len())
	assert.Nil(t, nilIdx.Items())

	var zero Index[TableInfo]
	zero.Add(NewTableInfo("t", "", "InnoDB", "utf8mb4", "utf8mb4_general_ci"))
	assert.True(t, zero.Contains("T"))
}

func TestDecodeType(t *testing.T) {
	tests := []struct {
		raw       string
		name      string
		length    int
		hasLength bool
	}{
		{"varchar(255)", "varchar", 255, true},
		{"INT(11) unsigned", "int", 11, true},
		{"text", "text", 0, false},
		{"decimal(10,2)", "decimal", 0, false},
		{"enum('a','b')", "enum", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			name, length, has, err := DecodeType(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.length, length)
			assert.Equal(t, tt.hasLength, has)
		})
	}
}

func TestDecodeType_Unparseable(t *testing.T) {
	for _, raw := range []string{"", "(11)", "123", "int(99999999999999999999)"} {
		t.Run(raw, func(t *testing.T) {
			_, err := NewFieldInfo(FieldSpec{Table: "t", Name: "c", Type: raw})
			require.Error(t, err)
			assert.True(t, errs.IsUnparseableType(err))
		})
	}
}

func TestFieldInfo_Facets(t *testing.T) {
	base := FieldSpec{
		Table: "users", Name: "email", Type: "varchar(255)",
		Collation: "utf8mb4_general_ci", Nullable: true, Default: strPtr("x"),
	}
	a := mustField(t, base)

	t.Run("identical", func(t *testing.T) {
		b := mustField(t, base)
		assert.True(t, a.Equals(b))
	})

	t.Run("name case differs", func(t *testing.T) {
		spec := base
		spec.Name = "EMAIL"
		b := mustField(t, spec)
		assert.True(t, a.SimpleEquals(b))
		assert.True(t, a.Equals(b))
	})

	t.Run("length differs", func(t *testing.T) {
		spec := base
		spec.Type = "varchar(100)"
		b := mustField(t, spec)
		assert.False(t, a.TypeEquals(b))
		assert.True(t, a.SimpleEquals(b))
		assert.False(t, a.Equals(b))
	})

	t.Run("collation only", func(t *testing.T) {
		spec := base
		spec.Collation = "utf8mb4_bin"
		b := mustField(t, spec)
		assert.False(t, a.CollationEquals(b))
		assert.True(t, a.TypeEquals(b))
		assert.True(t, a.SimpleEquals(b))
		assert.False(t, a.Equals(b))
	})

	t.Run("default removed", func(t *testing.T) {
		spec := base
		spec.Default = nil
		b := mustField(t, spec)
		assert.False(t, a.SimpleEquals(b))
	})

	t.Run("nullability differs", func(t *testing.T) {
		spec := base
		spec.Nullable = false
		b := mustField(t, spec)
		assert.False(t, a.SimpleEquals(b))
	})

	t.Run("previous field and auto increment ignored", func(t *testing.T) {
		spec := base
		spec.Previous = "id"
		spec.AutoIncrement = true
		b := mustField(t, spec)
		assert.True(t, a.Equals(b))
	})
}

func TestFieldInfo_DefaultIsCopied(t *testing.T) {
	def := "1"
	f := mustField(t, FieldSpec{Name: "n", Type: "int", Default: &def})
	def = "2"

	v, ok := f.Default()
	require.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestParseGenerationKind(t *testing.T) {
	assert.Equal(t, GenerationStored, ParseGenerationKind("STORED GENERATED"))
	assert.Equal(t, GenerationVirtual, ParseGenerationKind("virtual generated"))
	assert.Equal(t, GenerationNone, ParseGenerationKind("auto_increment"))
	assert.Equal(t, "VIRTUAL", GenerationVirtual.String())
}

func TestKeyInfo_Equals(t *testing.T) {
	a := NewKeyInfo("orders", "idx_customer", false,
		KeyField{Name: "customer_id"}, KeyField{Name: "created_at"}, KeyField{Name: "note", Length: 10})

	t.Run("same fields in different order", func(t *testing.T) {
		b := NewKeyInfo("orders", "IDX_CUSTOMER", false,
			KeyField{Name: "note", Length: 10}, KeyField{Name: "created_at"}, KeyField{Name: "customer_id"})
		assert.True(t, a.Equals(b))
		assert.True(t, b.Equals(a))
	})

	t.Run("extra field", func(t *testing.T) {
		b := NewKeyInfo("orders", "idx_customer", false,
			KeyField{Name: "customer_id"}, KeyField{Name: "created_at"}, KeyField{Name: "note", Length: 10},
			KeyField{Name: "status"})
		assert.False(t, a.Equals(b))
	})

	t.Run("prefix length differs", func(t *testing.T) {
		b := NewKeyInfo("orders", "idx_customer", false,
			KeyField{Name: "customer_id"}, KeyField{Name: "created_at"}, KeyField{Name: "note", Length: 20})
		assert.False(t, a.Equals(b))
	})

	t.Run("uniqueness differs", func(t *testing.T) {
		b := NewKeyInfo("orders", "idx_customer", true, a.Fields()...)
		assert.False(t, a.Equals(b))
	})

	t.Run("name differs", func(t *testing.T) {
		b := NewKeyInfo("orders", "idx_other", false, a.Fields()...)
		assert.False(t, a.Equals(b))
	})

	t.Run("declared order preserved", func(t *testing.T) {
		assert.Equal(t, "customer_id", a.Fields()[0].Name)
		assert.Equal(t, "`note` (10)", a.Fields()[2].String())
	})
}

func TestKeyInfo_IsPrimary(t *testing.T) {
	assert.True(t, NewKeyInfo("t", "PRIMARY", true, KeyField{Name: "id"}).IsPrimary())
	assert.False(t, NewKeyInfo("t", "primary_lookup", true).IsPrimary())
}

func TestTableInfo_Equals(t *testing.T) {
	a := NewTableInfo("users", "CREATE TABLE users (id int)", "InnoDB", "utf8mb4", "utf8mb4_general_ci")

	assert.True(t, a.Equals(NewTableInfo("users", "CREATE TABLE users (id bigint)", "InnoDB", "utf8mb4", "utf8mb4_general_ci")),
		"create statement body is not compared")
	assert.False(t, a.Equals(NewTableInfo("users", "", "MyISAM", "utf8mb4", "utf8mb4_general_ci")))
	assert.False(t, a.Equals(NewTableInfo("users", "", "InnoDB", "latin1", "utf8mb4_general_ci")))
	assert.False(t, a.Equals(NewTableInfo("users", "", "InnoDB", "utf8mb4", "utf8mb4_bin")))
}

func TestViewInfo_Equals(t *testing.T) {
	a := NewViewInfo("v", "CREATE VIEW v AS select 1")
	assert.True(t, a.Equals(NewViewInfo("v", "CREATE VIEW v AS select 1")))
	assert.False(t, a.Equals(NewViewInfo("v", "CREATE VIEW v AS select 2")))
}

func TestProcedureInfo(t *testing.T) {
	raw := "CREATE DEFINER=`root`@`localhost` PROCEDURE `touch`()\nBEGIN\n  SELECT 1;\nEND"
	p := NewProcedureInfo("touch", RoutineProcedure, raw)

	assert.Equal(t, "CREATE PROCEDURE `touch`()\nBEGIN\n  SELECT 1;\nEND", p.CreateStatement())

	t.Run("formatting and definer ignored", func(t *testing.T) {
		other := NewProcedureInfo("touch", RoutineProcedure,
			"CREATE DEFINER=`admin`@`%` PROCEDURE `touch`() BEGIN select 1; END")
		assert.True(t, p.Equals(other))
	})

	t.Run("kind differs", func(t *testing.T) {
		other := NewProcedureInfo("touch", RoutineFunction, raw)
		assert.False(t, p.Equals(other))
	})

	t.Run("body differs", func(t *testing.T) {
		other := NewProcedureInfo("touch", RoutineProcedure, "CREATE PROCEDURE `touch`() BEGIN SELECT 2; END")
		assert.False(t, p.Equals(other))
	})
}

func TestSnapshot(t *testing.T) {
	s := NewSnapshot("shop")
	id := mustField(t, FieldSpec{Table: "Users", Name: "id", Type: "int(11)"})
	s.AddTable(NewTableInfo("Users", "", "InnoDB", "utf8mb4", "utf8mb4_general_ci"),
		[]FieldInfo{id},
		[]KeyInfo{NewKeyInfo("Users", "PRIMARY", true, KeyField{Name: "id"})})

	assert.True(t, s.Fields("users").Contains("ID"))
	assert.True(t, s.Keys("USERS").Contains("primary"))
	assert.Equal(t, 0, s.Fields("missing").Len())
	assert.Equal(t, 0, s.Keys("missing").Len())
}
