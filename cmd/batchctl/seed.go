package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/agro-trazabilidad-api/internal/application/traceability"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/entity"
)

// seedFile formato del archivo de carga.
//
//	actor: cosecha-2025
//	batches:
//	  - batchNumber: SEED-1
//	    batchType: SEED
//	    initialQuantity: "100"
//	    expiryDate: 2026-01-31
//	  - batchNumber: CROP-1
//	    batchType: CROP
//	    initialQuantity: "80"
//	    parentBatchNumber: SEED-1
type seedFile struct {
	Actor   string      `yaml:"actor"`
	Batches []seedBatch `yaml:"batches"`
}

type seedBatch struct {
	BatchNumber          string         `yaml:"batchNumber"`
	BatchType            string         `yaml:"batchType"`
	ProductID            string         `yaml:"productId"`
	OriginCountry        string         `yaml:"originCountry"`
	HarvestDate          string         `yaml:"harvestDate"`
	ExpiryDate           string         `yaml:"expiryDate"`
	ParentBatchNumber    string         `yaml:"parentBatchNumber"`
	QualityCertificateID string         `yaml:"qualityCertificateId"`
	InitialQuantity      string         `yaml:"initialQuantity"`
	UnitOfMeasure        string         `yaml:"unitOfMeasure"`
	Notes                string         `yaml:"notes"`
	CustomFields         map[string]any `yaml:"customFields"`
}

// seedResult una fila del resumen.
type seedResult struct {
	Batch   *entity.Batch
	Skipped bool
}

func newSeedCmd() *cobra.Command {
	var (
		file         string
		actor        string
		skipExisting bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Crea lotes desde un archivo YAML",
		Long: "Crea los lotes en el orden del archivo. parentBatchNumber se resuelve contra lotes\n" +
			"creados antes en el mismo archivo o ya existentes en el almacenamiento.",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("abrir %s: %w", file, err)
			}
			defer f.Close()
			sf, err := parseSeedFile(f)
			if err != nil {
				return err
			}
			if actor != "" {
				sf.Actor = actor
			}

			svc, closeFn, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			results, err := seedBatches(cmd.Context(), svc, sf, skipExisting)
			printSeedResults(cmd.OutOrStdout(), results)
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "batches.yaml", "archivo YAML con los lotes")
	cmd.Flags().StringVar(&actor, "actor", "", "usuario registrado como createdBy (por defecto el del archivo o batchctl)")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "omitir lotes cuyo número ya existe")
	return cmd
}

func parseSeedFile(r io.Reader) (*seedFile, error) {
	var sf seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil {
		return nil, fmt.Errorf("leer YAML: %w", err)
	}
	if len(sf.Batches) == 0 {
		return nil, errors.New("el archivo no contiene lotes")
	}
	return &sf, nil
}

// seedBatches crea los lotes en orden y se detiene en el primer error; devuelve lo
// procesado hasta ese punto.
func seedBatches(ctx context.Context, svc *traceability.BatchTraceabilityService, sf *seedFile, skipExisting bool) ([]seedResult, error) {
	actor := sf.Actor
	if actor == "" {
		actor = "batchctl"
	}
	ids := make(map[string]string, len(sf.Batches))
	results := make([]seedResult, 0, len(sf.Batches))

	for i, sb := range sf.Batches {
		in, err := sb.toInput()
		if err != nil {
			return results, fmt.Errorf("lote #%d (%s): %w", i+1, sb.BatchNumber, err)
		}
		if p := strings.TrimSpace(sb.ParentBatchNumber); p != "" {
			id, err := resolveParent(ctx, svc, ids, p)
			if err != nil {
				return results, fmt.Errorf("lote #%d (%s): %w", i+1, sb.BatchNumber, err)
			}
			in.ParentBatchID = id
		}

		b, err := svc.CreateBatch(ctx, in, actor)
		if errors.Is(err, domain.ErrDuplicate) && skipExisting {
			if b, err = svc.GetBatchByNumber(ctx, in.BatchNumber); err == nil {
				ids[b.BatchNumber] = b.ID
				results = append(results, seedResult{Batch: b, Skipped: true})
				continue
			}
		}
		if err != nil {
			return results, fmt.Errorf("lote #%d (%s): %w", i+1, sb.BatchNumber, err)
		}
		ids[b.BatchNumber] = b.ID
		results = append(results, seedResult{Batch: b})
	}
	return results, nil
}

func resolveParent(ctx context.Context, svc *traceability.BatchTraceabilityService, ids map[string]string, number string) (string, error) {
	if id, ok := ids[number]; ok {
		return id, nil
	}
	parent, err := svc.GetBatchByNumber(ctx, number)
	if err != nil {
		return "", fmt.Errorf("lote padre %s: %w", number, err)
	}
	ids[number] = parent.ID
	return parent.ID, nil
}

func (sb seedBatch) toInput() (traceability.CreateBatchInput, error) {
	qty, err := decimal.NewFromString(strings.TrimSpace(sb.InitialQuantity))
	if err != nil {
		return traceability.CreateBatchInput{}, domain.Invalid("initialQuantity inválida %q", sb.InitialQuantity)
	}
	harvest, err := parseDate("harvestDate", sb.HarvestDate)
	if err != nil {
		return traceability.CreateBatchInput{}, err
	}
	expiry, err := parseDate("expiryDate", sb.ExpiryDate)
	if err != nil {
		return traceability.CreateBatchInput{}, err
	}
	return traceability.CreateBatchInput{
		BatchNumber:          sb.BatchNumber,
		BatchType:            entity.BatchType(strings.ToUpper(strings.TrimSpace(sb.BatchType))),
		ProductID:            sb.ProductID,
		OriginCountry:        sb.OriginCountry,
		HarvestDate:          harvest,
		ExpiryDate:           expiry,
		QualityCertificateID: sb.QualityCertificateID,
		InitialQuantity:      qty,
		UnitOfMeasure:        sb.UnitOfMeasure,
		Notes:                sb.Notes,
		CustomFields:         sb.CustomFields,
	}, nil
}

func parseDate(field, v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, domain.Invalid("%s: fecha inválida %q (RFC3339 o YYYY-MM-DD)", field, v)
}

func printSeedResults(out io.Writer, results []seedResult) {
	if len(results) == 0 {
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NUMERO\tTIPO\tCANTIDAD\tPADRE\tID\tRESULTADO")
	for _, r := range results {
		state := "creado"
		if r.Skipped {
			state = "existente"
		}
		parent := r.Batch.ParentBatchID
		if parent == "" {
			parent = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\t%s\t%s\n", r.Batch.BatchNumber, r.Batch.BatchType,
			r.Batch.InitialQuantity, r.Batch.UnitOfMeasure, parent, r.Batch.ID, state)
	}
	w.Flush()
}
