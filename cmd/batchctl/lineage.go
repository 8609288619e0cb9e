package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/agro-trazabilidad-api/internal/application/traceability"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/entity"
)

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <batchNumber>",
		Short: "Muestra el árbol de lotes derivados",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			return runTree(cmd.Context(), cmd.OutOrStdout(), svc, args[0])
		},
	}
}

func newChainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chain <batchNumber>",
		Short: "Muestra la cadena de origen (raíz -> lote)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			return runChain(cmd.Context(), cmd.OutOrStdout(), svc, args[0])
		},
	}
}

func runTree(ctx context.Context, out io.Writer, svc *traceability.BatchTraceabilityService, batchNumber string) error {
	b, err := svc.GetBatchByNumber(ctx, batchNumber)
	if err != nil {
		return err
	}
	tree, err := svc.GetTraceabilityTree(ctx, b.ID)
	if err != nil {
		return err
	}
	printNode(out, tree.Root, "", true, true)
	fmt.Fprintf(out, "\nprofundidad: %d  lotes: %d\n", tree.Depth, tree.TotalBatches)
	return nil
}

// printNode dibuja el árbol con conectores ├── / └──.
func printNode(out io.Writer, n *entity.TraceabilityNode, prefix string, last, root bool) {
	line := describe(n.Batch)
	switch {
	case root:
		fmt.Fprintln(out, line)
	case last:
		fmt.Fprintln(out, prefix+"└── "+line)
	default:
		fmt.Fprintln(out, prefix+"├── "+line)
	}
	childPrefix := prefix
	if !root {
		if last {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	}
	for i, c := range n.Children {
		printNode(out, c, childPrefix, i == len(n.Children)-1, false)
	}
}

func runChain(ctx context.Context, out io.Writer, svc *traceability.BatchTraceabilityService, batchNumber string) error {
	b, err := svc.GetBatchByNumber(ctx, batchNumber)
	if err != nil {
		return err
	}
	chain, err := svc.GetTraceabilityChain(ctx, b.ID)
	if err != nil {
		return err
	}
	parts := make([]string, 0, len(chain))
	for _, c := range chain {
		parts = append(parts, c.BatchNumber)
	}
	fmt.Fprintln(out, strings.Join(parts, " -> "))
	for i, c := range chain {
		fmt.Fprintf(out, "%d. %s\n", i+1, describe(c))
	}
	return nil
}

func describe(b *entity.Batch) string {
	return fmt.Sprintf("%s [%s %s] %s/%s %s", b.BatchNumber, b.BatchType, b.Status,
		b.AvailableQuantity(), b.RemainingQuantity, b.UnitOfMeasure)
}
