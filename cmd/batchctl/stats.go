package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jhoicas/agro-trazabilidad-api/internal/application/traceability"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/entity"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Resumen de lotes por estado y tipo",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			return runStats(cmd.Context(), cmd.OutOrStdout(), svc)
		},
	}
}

func runStats(ctx context.Context, out io.Writer, svc *traceability.BatchTraceabilityService) error {
	s, err := svc.GetBatchStatistics(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Total\t%d\n", s.Total)
	fmt.Fprintf(w, "Vencidos\t%d\n", s.Expired)
	fmt.Fprintf(w, "Próximos a vencer (%dd)\t%d\n", entity.DefaultExpiringSoonDays, s.ExpiringSoon)
	fmt.Fprintf(w, "Cantidad restante\t%s\n", s.TotalQuantity)
	fmt.Fprintf(w, "Cantidad asignada\t%s\n", s.AllocatedQuantity)
	fmt.Fprintf(w, "Cantidad disponible\t%s\n", s.AvailableQuantity)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "ESTADO\tLOTES")
	for _, st := range entity.BatchStatuses {
		n := s.ByStatus[st]
		if st == entity.BatchStatusExpired {
			n = s.Expired
		}
		fmt.Fprintf(w, "%s\t%d\n", st, n)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "TIPO\tLOTES")
	for _, t := range entity.BatchTypes {
		fmt.Fprintf(w, "%s\t%d\n", t, s.ByType[t])
	}
	return w.Flush()
}
