// Package catalogfile carga un maestro de referencia (productos, bodegas, ubicaciones, lotes y
// política de dimensiones por empresa) desde XML. Lo usan el modo memoria del servicio y la
// herramienta de siembra; el maestro real vive fuera del libro.
//
// Formato:
//
//	<catalog>
//	  <tenant id="t1" placement_required="false" batch_required="false">
//	    <product id="p1" sku="A-1" name="Tornillo" unit="UND"/>
//	    <location id="l1" name="Principal">
//	      <placement id="pl1" name="A-01" barred="false"/>
//	      <batch id="b1" name="L-2026-01" expires="2026-12-31" barred="false"/>
//	    </location>
//	  </tenant>
//	</catalog>
package catalogfile

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/ucarion/c14n"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Tenant política y maestro de una empresa.
type Tenant struct {
	ID         string
	Policy     entity.DimensionPolicy
	HasPolicy  bool
	Products   []entity.Product
	Locations  []entity.Location
	Placements []entity.Placement
	Batches    []entity.Batch
}

// Catalog contenido de un archivo de maestro.
type Catalog struct {
	Tenants []Tenant
	// Fingerprint BLAKE2b-256 del XML canónico: no cambia con la sangría ni con la codificación.
	Fingerprint string
}

// Sink destino de la siembra (catálogo en memoria o PostgreSQL).
type Sink interface {
	UpsertProduct(ctx context.Context, p entity.Product) error
	UpsertLocation(ctx context.Context, l entity.Location) error
	UpsertPlacement(ctx context.Context, p entity.Placement) error
	UpsertBatch(ctx context.Context, b entity.Batch) error
	PutDimensionPolicy(ctx context.Context, tenantID string, p entity.DimensionPolicy) error
}

// Counts totales sembrados.
type Counts struct {
	Tenants, Products, Locations, Placements, Batches int
}

// charsetReader acepta los archivos exportados en ISO-8859-1 / Windows-1252 por sistemas legados.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(input, charmap.Windows1252.NewDecoder()), nil
	case "utf-8", "utf8", "":
		return input, nil
	}
	return nil, fmt.Errorf("catalogfile: codificación no soportada %q", label)
}

// Parse lee y valida el maestro completo.
func Parse(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("catalogfile: leer: %w", err)
	}

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("catalogfile: XML inválido: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "catalog" {
		return nil, fmt.Errorf("catalogfile: se esperaba el elemento raíz <catalog>")
	}

	out := &Catalog{}
	seen := make(map[string]bool)
	claim := func(kind, id string) error {
		if id == "" {
			return fmt.Errorf("catalogfile: %s sin id", kind)
		}
		if seen[kind+"/"+id] {
			return fmt.Errorf("catalogfile: %s %s repetido", kind, id)
		}
		seen[kind+"/"+id] = true
		return nil
	}

	for _, te := range root.SelectElements("tenant") {
		t := Tenant{ID: te.SelectAttrValue("id", "")}
		if err := claim("tenant", t.ID); err != nil {
			return nil, err
		}
		if te.SelectAttr("placement_required") != nil || te.SelectAttr("batch_required") != nil {
			t.HasPolicy = true
			if t.Policy.PlacementRequired, err = boolAttr(te, "placement_required"); err != nil {
				return nil, err
			}
			if t.Policy.BatchRequired, err = boolAttr(te, "batch_required"); err != nil {
				return nil, err
			}
		}

		for _, pe := range te.SelectElements("product") {
			p := entity.Product{
				ID:          pe.SelectAttrValue("id", ""),
				TenantID:    t.ID,
				SKU:         pe.SelectAttrValue("sku", ""),
				Name:        pe.SelectAttrValue("name", ""),
				UnitMeasure: pe.SelectAttrValue("unit", "UND"),
			}
			if err := claim("product", p.ID); err != nil {
				return nil, err
			}
			if p.SKU == "" {
				p.SKU = p.ID
			}
			t.Products = append(t.Products, p)
		}

		for _, le := range te.SelectElements("location") {
			l := entity.Location{ID: le.SelectAttrValue("id", ""), TenantID: t.ID, Name: le.SelectAttrValue("name", "")}
			if err := claim("location", l.ID); err != nil {
				return nil, err
			}
			t.Locations = append(t.Locations, l)

			for _, ple := range le.SelectElements("placement") {
				barred, err := boolAttr(ple, "barred")
				if err != nil {
					return nil, err
				}
				p := entity.Placement{
					ID:         ple.SelectAttrValue("id", ""),
					TenantID:   t.ID,
					LocationID: l.ID,
					Name:       ple.SelectAttrValue("name", ""),
					Barred:     barred,
				}
				if err := claim("placement", p.ID); err != nil {
					return nil, err
				}
				t.Placements = append(t.Placements, p)
			}

			for _, be := range le.SelectElements("batch") {
				barred, err := boolAttr(be, "barred")
				if err != nil {
					return nil, err
				}
				b := entity.Batch{
					ID:         be.SelectAttrValue("id", ""),
					TenantID:   t.ID,
					LocationID: l.ID,
					Name:       be.SelectAttrValue("name", ""),
					Barred:     barred,
				}
				if err := claim("batch", b.ID); err != nil {
					return nil, err
				}
				if raw := be.SelectAttrValue("expires", ""); raw != "" {
					exp, err := time.Parse(time.DateOnly, raw)
					if err != nil {
						return nil, fmt.Errorf("catalogfile: lote %s: expires debe ser AAAA-MM-DD", b.ID)
					}
					b.ExpiresAt = &exp
				}
				t.Batches = append(t.Batches, b)
			}
		}
		out.Tenants = append(out.Tenants, t)
	}

	out.Fingerprint, err = fingerprint(root)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func boolAttr(el *etree.Element, key string) (bool, error) {
	raw := el.SelectAttrValue(key, "")
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("catalogfile: <%s> atributo %s no es booleano: %q", el.Tag, key, raw)
	}
	return b, nil
}

// fingerprint canonicaliza el elemento raíz ya decodificado: UTF-8, sin declaración ni sangría.
func fingerprint(root *etree.Element) (string, error) {
	doc := etree.NewDocument()
	doc.SetRoot(root.Copy())
	doc.Unindent()
	utf8XML, err := doc.WriteToBytes()
	if err != nil {
		return "", fmt.Errorf("catalogfile: serializar: %w", err)
	}
	dec := xml.NewDecoder(bytes.NewReader(utf8XML))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("catalogfile: canonicalizar: %w", err)
	}
	sum := blake2b.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Apply siembra el maestro en el destino. Las bodegas van antes que sus ubicaciones y lotes.
func (c *Catalog) Apply(ctx context.Context, sink Sink) (Counts, error) {
	var n Counts
	for _, t := range c.Tenants {
		if t.HasPolicy {
			if err := sink.PutDimensionPolicy(ctx, t.ID, t.Policy); err != nil {
				return n, fmt.Errorf("política de %s: %w", t.ID, err)
			}
		}
		for _, p := range t.Products {
			if err := sink.UpsertProduct(ctx, p); err != nil {
				return n, fmt.Errorf("producto %s: %w", p.ID, err)
			}
			n.Products++
		}
		for _, l := range t.Locations {
			if err := sink.UpsertLocation(ctx, l); err != nil {
				return n, fmt.Errorf("bodega %s: %w", l.ID, err)
			}
			n.Locations++
		}
		for _, p := range t.Placements {
			if err := sink.UpsertPlacement(ctx, p); err != nil {
				return n, fmt.Errorf("ubicación %s: %w", p.ID, err)
			}
			n.Placements++
		}
		for _, b := range t.Batches {
			if err := sink.UpsertBatch(ctx, b); err != nil {
				return n, fmt.Errorf("lote %s: %w", b.ID, err)
			}
			n.Batches++
		}
		n.Tenants++
	}
	return n, nil
}
