package ddl

import (
	"testing"

	"github.com/koustreak/schemadiff/internal/compare"
	"github.com/koustreak/schemadiff/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func field(t *testing.T, spec schema.FieldSpec) *schema.FieldInfo {
	t.Helper()
	if spec.Table == "" {
		spec.Table = "users"
	}
	f, err := schema.NewFieldInfo(spec)
	require.NoError(t, err)
	return &f
}

func render(d compare.Diff, dir Direction) []string {
	var b Buffer
	RenderDiff(&b, d, dir)
	return b.Lines()
}

func TestRenderTable(t *testing.T) {
	a := schema.NewTableInfo("users", "CREATE TABLE `users` (\n  `id` int NOT NULL\n) ENGINE=InnoDB", "InnoDB", "utf8mb4", "utf8mb4_general_ci")
	b := schema.NewTableInfo("users", "CREATE TABLE `users` (`id` int)", "MyISAM", "utf8mb4", "utf8mb4_bin")

	t.Run("left only", func(t *testing.T) {
		d := compare.NewTableDiff(compare.ModeLeftOnly, &a, nil)
		assert.Equal(t, a.CreateStatement()+";\n", String(d, Forward))
		assert.Equal(t, "DROP TABLE `users`;\n", String(d, Reverse))
	})

	t.Run("right only", func(t *testing.T) {
		d := compare.NewTableDiff(compare.ModeRightOnly, nil, &b)
		assert.Equal(t, "DROP TABLE `users`;\n", String(d, Forward))
		assert.Equal(t, b.CreateStatement()+";\n", String(d, Reverse))
	})

	t.Run("different options only", func(t *testing.T) {
		d := compare.NewTableDiff(compare.ModeDifferent, &a, &b)
		assert.Equal(t, []string{"ALTER TABLE `users` ENGINE=InnoDB COLLATE=utf8mb4_general_ci;"}, render(d, Forward))
		assert.Equal(t, []string{"ALTER TABLE `users` ENGINE=MyISAM COLLATE=utf8mb4_bin;"}, render(d, Reverse))
	})

	t.Run("charset", func(t *testing.T) {
		c := schema.NewTableInfo("users", "", "InnoDB", "latin1", "utf8mb4_general_ci")
		d := compare.NewTableDiff(compare.ModeDifferent, &a, &c)
		assert.Equal(t, []string{"ALTER TABLE `users` CHARSET=utf8mb4;"}, render(d, Forward))
	})

	t.Run("equal and children differ render nothing", func(t *testing.T) {
		assert.Empty(t, String(compare.NewTableDiff(compare.ModeEqual, &a, &a), Forward))
		assert.Empty(t, String(compare.NewTableDiff(compare.ModeChildrenDiffer, &a, &b), Reverse))
	})
}

func TestRenderView(t *testing.T) {
	a := schema.NewViewInfo("v", "CREATE VIEW `v` AS select 1")
	b := schema.NewViewInfo("v", "CREATE VIEW `v` AS select 2")

	left := compare.NewViewDiff(compare.ModeLeftOnly, &a, nil)
	assert.Equal(t, []string{"CREATE VIEW `v` AS select 1;"}, render(left, Forward))
	assert.Equal(t, []string{"DROP VIEW `v`;"}, render(left, Reverse))

	right := compare.NewViewDiff(compare.ModeRightOnly, nil, &b)
	assert.Equal(t, []string{"DROP VIEW `v`;"}, render(right, Forward))
	assert.Equal(t, []string{"CREATE VIEW `v` AS select 2;"}, render(right, Reverse))

	diff := compare.NewViewDiff(compare.ModeDifferent, &a, &b)
	assert.Equal(t, []string{"DROP VIEW `v`;", "CREATE VIEW `v` AS select 1;"}, render(diff, Forward))
	assert.Equal(t, []string{"DROP VIEW `v`;", "CREATE VIEW `v` AS select 2;"}, render(diff, Reverse))
}

func TestRenderProcedure(t *testing.T) {
	a := schema.NewProcedureInfo("f", schema.RoutineFunction, "CREATE FUNCTION `f`() RETURNS int RETURN 1")
	b := schema.NewProcedureInfo("f", schema.RoutineFunction, "CREATE FUNCTION `f`() RETURNS int RETURN 2")

	left := compare.NewProcedureDiff(compare.ModeLeftOnly, &a, nil)
	assert.Equal(t, "DELIMITER $$\nCREATE FUNCTION `f`() RETURNS int RETURN 1$$\nDELIMITER ;\n", String(left, Forward))
	assert.Equal(t, "DROP FUNCTION `f`;\n", String(left, Reverse))

	diff := compare.NewProcedureDiff(compare.ModeDifferent, &a, &b)
	assert.Equal(t,
		"DROP FUNCTION `f`;\nDELIMITER $$\nCREATE FUNCTION `f`() RETURNS int RETURN 2$$\nDELIMITER ;\n",
		String(diff, Reverse))
}

func TestRenderField(t *testing.T) {
	a := field(t, schema.FieldSpec{Name: "email", Previous: "id", Type: "varchar(255)", Collation: "utf8mb4_bin"})
	b := field(t, schema.FieldSpec{Name: "email", Previous: "id", Type: "varchar(100)", Nullable: true})

	left := compare.NewFieldDiff(compare.ModeLeftOnly, a, nil)
	assert.Equal(t,
		[]string{"ALTER TABLE `users` ADD COLUMN `email` varchar(255) COLLATE utf8mb4_bin NOT NULL AFTER `id`;"},
		render(left, Forward))
	assert.Equal(t, []string{"ALTER TABLE `users` DROP COLUMN `email`;"}, render(left, Reverse))

	right := compare.NewFieldDiff(compare.ModeRightOnly, nil, b)
	assert.Equal(t, []string{"ALTER TABLE `users` DROP COLUMN `email`;"}, render(right, Forward))
	assert.Equal(t,
		[]string{"ALTER TABLE `users` ADD COLUMN `email` varchar(100) NULL DEFAULT NULL AFTER `id`;"},
		render(right, Reverse))

	diff := compare.NewFieldDiff(compare.ModeDifferent, a, b)
	assert.Equal(t,
		[]string{"ALTER TABLE `users` MODIFY COLUMN `email` varchar(255) COLLATE utf8mb4_bin NOT NULL AFTER `id`;"},
		render(diff, Forward))
	assert.Equal(t,
		[]string{"ALTER TABLE `users` MODIFY COLUMN `email` varchar(100) NULL DEFAULT NULL AFTER `id`;"},
		render(diff, Reverse))
}

func TestColumnDefinition(t *testing.T) {
	tests := []struct {
		name string
		spec schema.FieldSpec
		want string
	}{
		{
			name: "first auto increment",
			spec: schema.FieldSpec{Name: "id", Type: "int(11)", AutoIncrement: true},
			want: "`id` int(11) NOT NULL AUTO_INCREMENT FIRST",
		},
		{
			name: "numeric default",
			spec: schema.FieldSpec{Name: "qty", Previous: "id", Type: "int", Default: strPtr("0")},
			want: "`qty` int NOT NULL DEFAULT 0 AFTER `id`",
		},
		{
			name: "decimal default",
			spec: schema.FieldSpec{Name: "price", Previous: "qty", Type: "decimal(10,2)", Default: strPtr("1.50")},
			want: "`price` decimal NOT NULL DEFAULT 1.50 AFTER `qty`",
		},
		{
			name: "string default quoted",
			spec: schema.FieldSpec{Name: "state", Previous: "id", Type: "varchar(16)", Nullable: true, Default: strPtr("it's new")},
			want: "`state` varchar(16) NULL DEFAULT 'it''s new' AFTER `id`",
		},
		{
			name: "nan is a string",
			spec: schema.FieldSpec{Name: "s", Previous: "id", Type: "varchar(3)", Default: strPtr("NaN")},
			want: "`s` varchar(3) NOT NULL DEFAULT 'NaN' AFTER `id`",
		},
		{
			name: "empty string default",
			spec: schema.FieldSpec{Name: "s", Previous: "id", Type: "varchar(3)", Default: strPtr("")},
			want: "`s` varchar(3) NOT NULL DEFAULT '' AFTER `id`",
		},
		{
			name: "current timestamp",
			spec: schema.FieldSpec{Name: "created", Previous: "id", Type: "datetime", Default: strPtr("CURRENT_TIMESTAMP")},
			want: "`created` datetime NOT NULL DEFAULT 'CURRENT_TIMESTAMP' AFTER `id`",
		},
		{
			name: "stored generated column",
			spec: schema.FieldSpec{
				Name: "total", Previous: "price", Type: "int", Nullable: true,
				Generated: schema.Generation{Kind: schema.GenerationStored, Expression: "`qty` * 2"},
			},
			want: "`total` int GENERATED ALWAYS AS (`qty` * 2) STORED NULL AFTER `price`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ColumnDefinition(*field(t, tt.spec)))
		})
	}
}

func TestDefaultLiteral(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0", "0"},
		{"-1.5", "-1.5"},
		{"1e3", "1e3"},
		{"abc", "'abc'"},
		{"it's", "'it''s'"},
		{"NaN", "'NaN'"},
		{"CURRENT_TIMESTAMP", "'CURRENT_TIMESTAMP'"},
		{"current_timestamp(3)", "'current_timestamp(3)'"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultLiteral(tt.in))
		})
	}
}

func TestRenderKey(t *testing.T) {
	pk := schema.NewKeyInfo("users", "PRIMARY", true, schema.KeyField{Name: "id"})
	idx := schema.NewKeyInfo("users", "idx_name", false, schema.KeyField{Name: "last"}, schema.KeyField{Name: "first", Length: 10})
	uq := schema.NewKeyInfo("users", "idx_name", true, schema.KeyField{Name: "email"})

	assert.Equal(t, "PRIMARY KEY (`id`)", KeyDefinition(pk))
	assert.Equal(t, "INDEX `idx_name` (`last`, `first` (10))", KeyDefinition(idx))
	assert.Equal(t, "UNIQUE INDEX `idx_name` (`email`)", KeyDefinition(uq))

	left := compare.NewKeyDiff(compare.ModeLeftOnly, &pk, nil)
	assert.Equal(t, []string{"ALTER TABLE `users` ADD PRIMARY KEY (`id`);"}, render(left, Forward))
	assert.Equal(t, []string{"DROP INDEX `PRIMARY` ON `users`;"}, render(left, Reverse))

	right := compare.NewKeyDiff(compare.ModeRightOnly, nil, &idx)
	assert.Equal(t, []string{"DROP INDEX `idx_name` ON `users`;"}, render(right, Forward))

	diff := compare.NewKeyDiff(compare.ModeDifferent, &uq, &idx)
	assert.Equal(t, []string{
		"DROP INDEX `idx_name` ON `users`;",
		"ALTER TABLE `users` ADD UNIQUE INDEX `idx_name` (`email`);",
	}, render(diff, Forward))
	assert.Equal(t, []string{
		"DROP INDEX `idx_name` ON `users`;",
		"ALTER TABLE `users` ADD INDEX `idx_name` (`last`, `first` (10));",
	}, render(diff, Reverse))
}

func TestRender_DroppedKeyBeforeAddedKey(t *testing.T) {
	a := schema.NewSnapshot("a")
	a.AddTable(schema.NewTableInfo("t", "", "InnoDB", "utf8mb4", "utf8mb4_general_ci"), nil,
		[]schema.KeyInfo{schema.NewKeyInfo("t", "k_new", false, schema.KeyField{Name: "x"})})
	b := schema.NewSnapshot("b")
	b.AddTable(schema.NewTableInfo("t", "", "InnoDB", "utf8mb4", "utf8mb4_general_ci"), nil,
		[]schema.KeyInfo{schema.NewKeyInfo("t", "k_old", false, schema.KeyField{Name: "x"})})

	res, err := compare.New(nil).Compare(a, b)
	require.NoError(t, err)

	var buf Buffer
	Render(&buf, res.Diffs, Forward)
	assert.Equal(t, []string{
		"DROP INDEX `k_old` ON `t`;",
		"ALTER TABLE `t` ADD INDEX `k_new` (`x`);",
	}, buf.Lines())
}

func TestRenderDiff_PanicsOnImpossibleMode(t *testing.T) {
	v := schema.NewViewInfo("v", "")
	assert.Panics(t, func() {
		RenderDiff(&Buffer{}, compare.NewViewDiff(compare.ModeChildrenDiffer, &v, &v), Forward)
	})
	assert.Panics(t, func() {
		RenderDiff(&Buffer{}, compare.NewTableDiff(compare.Mode(42), nil, nil), Forward)
	})
}

func TestBuffer(t *testing.T) {
	var b Buffer
	b.Print("a")
	b.Println("b")
	b.Println("")
	b.Println("c")
	assert.Equal(t, "ab\n\nc\n", b.String())
	assert.Equal(t, []string{"ab", "c"}, b.Lines())
	b.Reset()
	assert.Equal(t, 0, b.Len())
}

func TestDirection_String(t *testing.T) {
	assert.Equal(t, "forward", Forward.String())
	assert.Equal(t, "reverse", Reverse.String())
}
