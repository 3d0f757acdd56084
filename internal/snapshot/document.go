// Package snapshot stores schema.Snapshot values as YAML documents, on disk
// or in object storage, so that a database can be compared against a
// captured state instead of a live server.
package snapshot

import (
	"strconv"
	"time"

	"github.com/koustreak/schemadiff/internal/errs"
	"github.com/koustreak/schemadiff/internal/schema"
)

// Version is the document format written by Encode.
const Version = 1

type document struct {
	Version    int            `yaml:"version"`
	Database   string         `yaml:"database"`
	CapturedAt time.Time      `yaml:"captured_at,omitempty"`
	Tables     []tableDoc     `yaml:"tables,omitempty"`
	Views      []viewDoc      `yaml:"views,omitempty"`
	Procedures []procedureDoc `yaml:"procedures,omitempty"`
}

type tableDoc struct {
	Name      string     `yaml:"name"`
	Engine    string     `yaml:"engine"`
	Charset   string     `yaml:"charset"`
	Collation string     `yaml:"collation"`
	Create    string     `yaml:"create,omitempty"`
	Fields    []fieldDoc `yaml:"fields"`
	Keys      []keyDoc   `yaml:"keys,omitempty"`
}

type fieldDoc struct {
	Name          string         `yaml:"name"`
	Type          string         `yaml:"type"`
	Collation     string         `yaml:"collation,omitempty"`
	Nullable      bool           `yaml:"nullable"`
	Default       *string        `yaml:"default,omitempty"`
	AutoIncrement bool           `yaml:"auto_increment,omitempty"`
	Generated     *generationDoc `yaml:"generated,omitempty"`
}

type generationDoc struct {
	Kind           string `yaml:"kind"`
	Expression     string `yaml:"expression"`
	BacksUniqueKey bool   `yaml:"backs_unique_key,omitempty"`
}

type keyDoc struct {
	Name   string        `yaml:"name"`
	Unique bool          `yaml:"unique"`
	Fields []keyFieldDoc `yaml:"fields"`
}

type keyFieldDoc struct {
	Name   string `yaml:"name"`
	Length int    `yaml:"length,omitempty"`
}

type viewDoc struct {
	Name   string `yaml:"name"`
	Create string `yaml:"create"`
}

type procedureDoc struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`
	Create string `yaml:"create"`
}

func fromSnapshot(s *schema.Snapshot, at time.Time) document {
	doc := document{Version: Version, Database: s.Database, CapturedAt: at}

	for _, t := range s.Tables.Items() {
		td := tableDoc{
			Name:      t.Name(),
			Engine:    t.Engine(),
			Charset:   t.Charset(),
			Collation: t.Collation(),
			Create:    t.CreateStatement(),
		}
		for _, f := range s.Fields(t.Name()).Items() {
			td.Fields = append(td.Fields, fromField(f))
		}
		for _, k := range s.Keys(t.Name()).Items() {
			kd := keyDoc{Name: k.Name(), Unique: k.Unique()}
			for _, kf := range k.Fields() {
				kd.Fields = append(kd.Fields, keyFieldDoc{Name: kf.Name, Length: kf.Length})
			}
			td.Keys = append(td.Keys, kd)
		}
		doc.Tables = append(doc.Tables, td)
	}
	for _, v := range s.Views.Items() {
		doc.Views = append(doc.Views, viewDoc{Name: v.Name(), Create: v.CreateStatement()})
	}
	for _, p := range s.Procedures.Items() {
		doc.Procedures = append(doc.Procedures, procedureDoc{Name: p.Name(), Kind: p.Kind(), Create: p.CreateStatement()})
	}
	return doc
}

func fromField(f schema.FieldInfo) fieldDoc {
	typ := f.Type()
	if n, ok := f.Length(); ok {
		typ += "(" + strconv.Itoa(n) + ")"
	}
	fd := fieldDoc{
		Name:          f.Name(),
		Type:          typ,
		Collation:     f.Collation(),
		Nullable:      f.Nullable(),
		AutoIncrement: f.AutoIncrement(),
	}
	if v, ok := f.Default(); ok {
		fd.Default = &v
	}
	if g := f.Generated(); g.Kind != schema.GenerationNone {
		fd.Generated = &generationDoc{Kind: g.Kind.String(), Expression: g.Expression, BacksUniqueKey: g.BacksUniqueKey}
	}
	return fd
}

// toSnapshot rebuilds the snapshot through the entity constructors. Column
// order in the document defines each field's predecessor.
func (doc document) toSnapshot() (*schema.Snapshot, error) {
	if doc.Version != Version {
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unsupported snapshot version %d", doc.Version)
	}

	s := schema.NewSnapshot(doc.Database)
	for _, td := range doc.Tables {
		if td.Name == "" {
			return nil, errs.New(errs.ErrKindInvalidInput, "snapshot: table without name")
		}

		fields := make([]schema.FieldInfo, 0, len(td.Fields))
		previous := ""
		for _, fd := range td.Fields {
			spec := schema.FieldSpec{
				Table:         td.Name,
				Name:          fd.Name,
				Previous:      previous,
				Type:          fd.Type,
				Collation:     fd.Collation,
				Nullable:      fd.Nullable,
				Default:       fd.Default,
				AutoIncrement: fd.AutoIncrement,
			}
			if fd.Generated != nil {
				spec.Generated = schema.Generation{
					Kind:           schema.ParseGenerationKind(fd.Generated.Kind),
					Expression:     fd.Generated.Expression,
					BacksUniqueKey: fd.Generated.BacksUniqueKey,
				}
			}
			f, err := schema.NewFieldInfo(spec)
			if err != nil {
				return nil, errs.Wrap(errs.KindOf(err), "snapshot: column "+td.Name+"."+fd.Name, err)
			}
			fields = append(fields, f)
			previous = fd.Name
		}

		keys := make([]schema.KeyInfo, 0, len(td.Keys))
		for _, kd := range td.Keys {
			kfs := make([]schema.KeyField, len(kd.Fields))
			for i, kf := range kd.Fields {
				kfs[i] = schema.KeyField{Name: kf.Name, Length: kf.Length}
			}
			keys = append(keys, schema.NewKeyInfo(td.Name, kd.Name, kd.Unique, kfs...))
		}

		s.AddTable(schema.NewTableInfo(td.Name, td.Create, td.Engine, td.Charset, td.Collation), fields, keys)
	}
	for _, vd := range doc.Views {
		s.AddView(schema.NewViewInfo(vd.Name, vd.Create))
	}
	for _, pd := range doc.Procedures {
		s.AddProcedure(schema.NewProcedureInfo(pd.Name, pd.Kind, pd.Create))
	}
	return s, nil
}
