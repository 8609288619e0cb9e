// Package manifest genera el manifiesto XML de trazabilidad de un lote.
//
// Estructura:
//
//	<TraceabilityManifest version="1" batchId=".." batchNumber=".." generatedAt=".." generatedBy="..">
//	  <Lineage>
//	    <Upstream count="n"> <Batch .../> ... </Upstream>          raíz -> lote
//	    <Downstream depth="d" totalBatches="t"> <Batch ...> <Batch .../> </Batch> </Downstream>
//	  </Lineage>
//	  <Digest algorithm="sha256">hex(sha256(C14N(Lineage)))</Digest>
//	</TraceabilityManifest>
//
// El digest se calcula sobre la forma canónica de <Lineage> sin espacios de indentación,
// de modo que el documento puede re-indentarse sin invalidarlo.
package manifest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/agro-trazabilidad-api/internal/application/traceability"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/entity"
)

// DigestAlgorithm único algoritmo soportado.
const DigestAlgorithm = "sha256"

// ErrDigestMismatch el linaje no coincide con el digest declarado.
var ErrDigestMismatch = domain.ErrDigestMismatch

var _ traceability.ManifestBuilder = (*XMLBuilder)(nil)

// XMLBuilder implementa traceability.ManifestBuilder con etree + C14N.
type XMLBuilder struct{}

// NewXMLBuilder construye el generador.
func NewXMLBuilder() *XMLBuilder { return &XMLBuilder{} }

// Build arma el manifiesto indentado.
func (XMLBuilder) Build(r *traceability.TraceabilityReport) ([]byte, error) {
	if r == nil || r.Batch == nil || r.Tree == nil || r.Tree.Root == nil {
		return nil, errors.New("manifiesto: informe incompleto")
	}

	lineage := etree.NewElement("Lineage")
	up := lineage.CreateElement("Upstream")
	up.CreateAttr("count", strconv.Itoa(len(r.Chain)))
	for _, b := range r.Chain {
		batchElement(up, b)
	}
	down := lineage.CreateElement("Downstream")
	down.CreateAttr("depth", strconv.Itoa(r.Tree.Depth))
	down.CreateAttr("totalBatches", strconv.Itoa(r.Tree.TotalBatches))
	nodeElement(down, r.Tree.Root)

	digest, err := digestOf(lineage)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("TraceabilityManifest")
	root.CreateAttr("version", "1")
	root.CreateAttr("batchId", r.Batch.ID)
	root.CreateAttr("batchNumber", r.Batch.BatchNumber)
	root.CreateAttr("generatedAt", r.GeneratedAt.UTC().Format(time.RFC3339))
	if r.GeneratedBy != "" {
		root.CreateAttr("generatedBy", r.GeneratedBy)
	}
	root.AddChild(lineage)
	d := root.CreateElement("Digest")
	d.CreateAttr("algorithm", DigestAlgorithm)
	d.SetText(digest)

	doc.Indent(2)
	return doc.WriteToBytes()
}

// Verify recalcula el digest de <Lineage> y lo compara con <Digest>.
func (XMLBuilder) Verify(data []byte) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return fmt.Errorf("%w: XML inválido: %v", domain.ErrInvalidInput, err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "TraceabilityManifest" {
		return fmt.Errorf("%w: falta TraceabilityManifest", domain.ErrInvalidInput)
	}
	lineage := root.SelectElement("Lineage")
	d := root.SelectElement("Digest")
	if lineage == nil || d == nil {
		return fmt.Errorf("%w: faltan Lineage o Digest", domain.ErrInvalidInput)
	}
	if alg := d.SelectAttrValue("algorithm", ""); alg != DigestAlgorithm {
		return fmt.Errorf("%w: algoritmo de digest no soportado %q", domain.ErrInvalidInput, alg)
	}
	got, err := digestOf(lineage)
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(d.Text()), got) {
		return ErrDigestMismatch
	}
	return nil
}

// digestOf serializa una copia de el sin indentación, la canoniza y devuelve sha256 en hex.
func digestOf(el *etree.Element) (string, error) {
	cp := el.Copy()
	stripIndent(cp)
	doc := etree.NewDocument()
	doc.SetRoot(cp)
	raw, err := doc.WriteToBytes()
	if err != nil {
		return "", fmt.Errorf("manifiesto: serializar linaje: %w", err)
	}
	canonical, err := canonicalizeXML(raw)
	if err != nil {
		return "", fmt.Errorf("manifiesto: C14N: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func canonicalizeXML(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

// stripIndent quita los nodos de texto que solo contienen espacios.
func stripIndent(el *etree.Element) {
	for _, tok := range append([]etree.Token(nil), el.Child...) {
		switch t := tok.(type) {
		case *etree.CharData:
			if strings.TrimSpace(t.Data) == "" {
				el.RemoveChild(t)
			}
		case *etree.Element:
			stripIndent(t)
		}
	}
}

func nodeElement(parent *etree.Element, n *entity.TraceabilityNode) {
	el := batchElement(parent, n.Batch)
	for _, child := range n.Children {
		nodeElement(el, child)
	}
}

func batchElement(parent *etree.Element, b *entity.Batch) *etree.Element {
	el := parent.CreateElement("Batch")
	el.CreateAttr("id", b.ID)
	el.CreateAttr("batchNumber", b.BatchNumber)
	el.CreateAttr("batchType", string(b.BatchType))
	el.CreateAttr("status", string(b.Status))
	el.CreateAttr("initialQuantity", b.InitialQuantity.String())
	el.CreateAttr("remainingQuantity", b.RemainingQuantity.String())
	el.CreateAttr("allocatedQuantity", b.AllocatedQuantity.String())
	el.CreateAttr("unitOfMeasure", b.UnitOfMeasure)
	el.CreateAttr("version", strconv.FormatInt(b.Version, 10))
	optionalAttr(el, "parentBatchId", b.ParentBatchID)
	optionalAttr(el, "productId", b.ProductID)
	optionalAttr(el, "originCountry", b.OriginCountry)
	optionalAttr(el, "qualityCertificateId", b.QualityCertificateID)
	if b.HarvestDate != nil {
		el.CreateAttr("harvestDate", b.HarvestDate.UTC().Format(time.RFC3339))
	}
	if b.ExpiryDate != nil {
		el.CreateAttr("expiryDate", b.ExpiryDate.UTC().Format(time.RFC3339))
	}
	return el
}

func optionalAttr(el *etree.Element, key, value string) {
	if value != "" {
		el.CreateAttr(key, value)
	}
}
