package entity

// TraceabilityNode un lote con sus lotes derivados directos.
type TraceabilityNode struct {
	Batch    *Batch
	Children []*TraceabilityNode
}

// TraceabilityTree árbol descendente desde un lote raíz.
// Depth = máximo número de aristas raíz-hoja; TotalBatches = nodos del árbol;
// Chain = recorrido en preorden (raíz primero, luego cada subárbol en orden).
type TraceabilityTree struct {
	Root         *TraceabilityNode
	Depth        int
	TotalBatches int
	Chain        []*Batch
}
