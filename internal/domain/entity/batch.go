package entity

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-trazabilidad-api/internal/domain"
)

// BatchType clasifica el material del lote.
type BatchType string

const (
	BatchTypeSeed       BatchType = "SEED"
	BatchTypeCrop       BatchType = "CROP"
	BatchTypeFertilizer BatchType = "FERTILIZER"
	BatchTypeFeed       BatchType = "FEED"
	BatchTypeProduct    BatchType = "PRODUCT"
)

// BatchTypes lista los tipos válidos en orden estable.
var BatchTypes = []BatchType{BatchTypeSeed, BatchTypeCrop, BatchTypeFertilizer, BatchTypeFeed, BatchTypeProduct}

// Valid indica si el tipo es uno de los conocidos.
func (t BatchType) Valid() bool {
	for _, v := range BatchTypes {
		if t == v {
			return true
		}
	}
	return false
}

// BatchStatus estado del ciclo de vida del lote.
// EXPIRED nunca se persiste: es un predicado derivado sobre ACTIVE/ON_HOLD (ver IsExpired).
type BatchStatus string

const (
	BatchStatusActive   BatchStatus = "ACTIVE"
	BatchStatusOnHold   BatchStatus = "ON_HOLD"
	BatchStatusBlocked  BatchStatus = "BLOCKED"
	BatchStatusExpired  BatchStatus = "EXPIRED"
	BatchStatusConsumed BatchStatus = "CONSUMED"
)

// BatchStatuses lista los estados en orden estable.
var BatchStatuses = []BatchStatus{BatchStatusActive, BatchStatusOnHold, BatchStatusBlocked, BatchStatusExpired, BatchStatusConsumed}

// Valid indica si el estado es uno de los conocidos.
func (s BatchStatus) Valid() bool {
	for _, v := range BatchStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// DefaultUnitOfMeasure unidad usada cuando no se indica ninguna.
const DefaultUnitOfMeasure = "KG"

// MaxQuantityScale decimales admitidos en cantidades (columnas NUMERIC(18,4)).
const MaxQuantityScale = 4

// checkScale rechaza cantidades con más decimales de los que el almacenamiento conserva.
func checkScale(qty decimal.Decimal, field string) error {
	if !qty.Equal(qty.Truncate(MaxQuantityScale)) {
		return domain.Invalid("%s admite como máximo %d decimales (%s)", field, MaxQuantityScale, qty)
	}
	return nil
}

// DefaultExpiringSoonDays ventana por defecto para "próximo a vencer".
const DefaultExpiringSoonDays = 30

const (
	holdMarker    = "[HOLD]"
	blockedMarker = "[BLOCKED]"
)

// Batch representa un lote trazable (semilla, cosecha, fertilizante, alimento o producto).
// Libro de cantidades: Initial fija, Remaining solo decrece al consumir, Allocated es lo reservado.
// Disponible = Remaining - Allocated. Todas las reglas de negocio viven en los métodos del lote;
// el repositorio nunca lo modifica.
type Batch struct {
	ID                   string
	BatchNumber          string // único entre todos los lotes
	BatchType            BatchType
	ProductID            string // referencia débil, resuelta fuera de este módulo
	OriginCountry        string
	HarvestDate          *time.Time
	ExpiryDate           *time.Time
	ParentBatchID        string // se asigna una sola vez al crear
	QualityCertificateID string
	Status               BatchStatus
	InitialQuantity      decimal.Decimal
	RemainingQuantity    decimal.Decimal
	AllocatedQuantity    decimal.Decimal
	UnitOfMeasure        string
	Notes                string
	CustomFields         map[string]any
	Version              int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
	CreatedBy            string
	UpdatedBy            string
}

// BatchOptions campos opcionales al crear un lote.
type BatchOptions struct {
	ProductID            string
	OriginCountry        string
	HarvestDate          *time.Time
	ExpiryDate           *time.Time
	ParentBatchID        string
	QualityCertificateID string
	Notes                string
	CustomFields         map[string]any
}

// BatchUpdate cambios de información básica; nil = sin cambio.
// ClearHarvestDate/ClearExpiryDate borran la fecha y tienen prioridad sobre el valor nuevo.
// CustomFields se fusiona por clave (la última escritura gana).
type BatchUpdate struct {
	BatchNumber          *string
	ProductID            *string
	OriginCountry        *string
	HarvestDate          *time.Time
	ExpiryDate           *time.Time
	ClearHarvestDate     bool
	ClearExpiryDate      bool
	QualityCertificateID *string
	UnitOfMeasure        *string
	Notes                *string
	CustomFields         map[string]any
}

// NewBatch crea un lote ACTIVE con Remaining = Initial y Allocated = 0.
func NewBatch(batchNumber string, batchType BatchType, initialQuantity decimal.Decimal, unitOfMeasure, createdBy string, opts BatchOptions) (*Batch, error) {
	if !batchType.Valid() {
		return nil, domain.Invalid("tipo de lote desconocido: %q", batchType)
	}
	if strings.TrimSpace(createdBy) == "" {
		return nil, domain.Invalid("createdBy es requerido")
	}
	if strings.TrimSpace(unitOfMeasure) == "" {
		unitOfMeasure = DefaultUnitOfMeasure
	}
	now := time.Now().UTC()
	b := &Batch{
		ID:                   uuid.New().String(),
		BatchNumber:          strings.TrimSpace(batchNumber),
		BatchType:            batchType,
		ProductID:            opts.ProductID,
		OriginCountry:        opts.OriginCountry,
		HarvestDate:          copyTime(opts.HarvestDate),
		ExpiryDate:           copyTime(opts.ExpiryDate),
		ParentBatchID:        opts.ParentBatchID,
		QualityCertificateID: opts.QualityCertificateID,
		Status:               BatchStatusActive,
		InitialQuantity:      initialQuantity,
		RemainingQuantity:    initialQuantity,
		AllocatedQuantity:    decimal.Zero,
		UnitOfMeasure:        unitOfMeasure,
		Notes:                opts.Notes,
		CustomFields:         copyFields(opts.CustomFields),
		Version:              1,
		CreatedAt:            now,
		UpdatedAt:            now,
		CreatedBy:            createdBy,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate verifica los invariantes del lote.
func (b *Batch) Validate() error {
	if strings.TrimSpace(b.BatchNumber) == "" {
		return domain.Invalid("el número de lote es requerido")
	}
	if !b.InitialQuantity.IsPositive() {
		return domain.Invalid("la cantidad inicial debe ser mayor que cero")
	}
	if err := checkScale(b.InitialQuantity, "la cantidad inicial"); err != nil {
		return err
	}
	if b.RemainingQuantity.IsNegative() {
		return domain.Invalid("la cantidad restante no puede ser negativa")
	}
	if b.AllocatedQuantity.IsNegative() {
		return domain.Invalid("la cantidad asignada no puede ser negativa")
	}
	if b.AllocatedQuantity.GreaterThan(b.RemainingQuantity) {
		return domain.Invalid("la cantidad asignada (%s) supera la restante (%s)", b.AllocatedQuantity, b.RemainingQuantity)
	}
	if b.HarvestDate != nil && b.ExpiryDate != nil && !b.HarvestDate.Before(*b.ExpiryDate) {
		return domain.Invalid("la fecha de cosecha debe ser anterior a la de vencimiento")
	}
	return nil
}

// UpdateBasicInfo aplica cambios de información básica. Solo permitido en ACTIVE.
// Si la validación final falla el lote queda intacto.
func (b *Batch) UpdateBasicInfo(u BatchUpdate, updatedBy string) error {
	if b.Status != BatchStatusActive {
		return domain.Invalid("solo se puede editar un lote ACTIVE (estado actual %s)", b.Status)
	}
	next := b.Clone()
	if u.BatchNumber != nil {
		next.BatchNumber = strings.TrimSpace(*u.BatchNumber)
	}
	if u.ProductID != nil {
		next.ProductID = *u.ProductID
	}
	if u.OriginCountry != nil {
		next.OriginCountry = *u.OriginCountry
	}
	if u.HarvestDate != nil {
		next.HarvestDate = copyTime(u.HarvestDate)
	}
	if u.ExpiryDate != nil {
		next.ExpiryDate = copyTime(u.ExpiryDate)
	}
	if u.ClearHarvestDate {
		next.HarvestDate = nil
	}
	if u.ClearExpiryDate {
		next.ExpiryDate = nil
	}
	if u.QualityCertificateID != nil {
		next.QualityCertificateID = *u.QualityCertificateID
	}
	if u.UnitOfMeasure != nil && strings.TrimSpace(*u.UnitOfMeasure) != "" {
		next.UnitOfMeasure = *u.UnitOfMeasure
	}
	if u.Notes != nil {
		next.Notes = *u.Notes
	}
	if len(u.CustomFields) > 0 {
		if next.CustomFields == nil {
			next.CustomFields = make(map[string]any, len(u.CustomFields))
		}
		for k, v := range u.CustomFields {
			next.CustomFields[k] = v
		}
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*b = *next
	b.touch(updatedBy)
	return nil
}

// Allocate reserva qty de lo disponible. Requiere lote activo y no vencido.
func (b *Batch) Allocate(qty decimal.Decimal, updatedBy string) error {
	if !qty.IsPositive() {
		return domain.Invalid("la cantidad a asignar debe ser mayor que cero")
	}
	if err := checkScale(qty, "la cantidad a asignar"); err != nil {
		return err
	}
	if !b.IsActive() {
		return domain.Invalid("el lote %s no está activo (estado %s, vencido=%t)", b.BatchNumber, b.Status, b.IsExpired())
	}
	if qty.GreaterThan(b.AvailableQuantity()) {
		return domain.Invalid("cantidad solicitada %s supera la disponible %s", qty, b.AvailableQuantity())
	}
	b.AllocatedQuantity = b.AllocatedQuantity.Add(qty)
	b.touch(updatedBy)
	return nil
}

// Deallocate libera una reserva; la cantidad asignada nunca baja de cero.
// Devuelve false si no hubo cambio.
func (b *Batch) Deallocate(qty decimal.Decimal, updatedBy string) (bool, error) {
	if !qty.IsPositive() || b.AllocatedQuantity.IsZero() {
		return false, nil
	}
	if err := checkScale(qty, "la cantidad a liberar"); err != nil {
		return false, err
	}
	next := b.AllocatedQuantity.Sub(qty)
	if next.IsNegative() {
		next = decimal.Zero
	}
	b.AllocatedQuantity = next
	b.touch(updatedBy)
	return true, nil
}

// Consume descuenta qty de lo asignado y de lo restante. Al llegar a cero pasa a CONSUMED.
func (b *Batch) Consume(qty decimal.Decimal, updatedBy string) error {
	if !qty.IsPositive() {
		return domain.Invalid("la cantidad a consumir debe ser mayor que cero")
	}
	if err := checkScale(qty, "la cantidad a consumir"); err != nil {
		return err
	}
	if b.Status == BatchStatusConsumed {
		return domain.Invalid("el lote %s ya fue consumido", b.BatchNumber)
	}
	if qty.GreaterThan(b.AllocatedQuantity) {
		return domain.Invalid("cantidad a consumir %s supera la asignada %s", qty, b.AllocatedQuantity)
	}
	b.AllocatedQuantity = b.AllocatedQuantity.Sub(qty)
	b.RemainingQuantity = b.RemainingQuantity.Sub(qty)
	if b.RemainingQuantity.IsZero() {
		b.Status = BatchStatusConsumed
	}
	b.touch(updatedBy)
	return nil
}

// PutOnHold ACTIVE -> ON_HOLD, registrando el motivo en las notas.
func (b *Batch) PutOnHold(reason, updatedBy string) error {
	if b.Status != BatchStatusActive {
		return domain.Invalid("solo un lote ACTIVE puede ponerse en retención (estado actual %s)", b.Status)
	}
	b.Status = BatchStatusOnHold
	b.appendNote(holdMarker, reason)
	b.touch(updatedBy)
	return nil
}

// ReleaseHold ON_HOLD -> ACTIVE. En otro estado no hace nada y devuelve false.
func (b *Batch) ReleaseHold(updatedBy string) bool {
	if b.Status != BatchStatusOnHold {
		return false
	}
	b.Status = BatchStatusActive
	b.touch(updatedBy)
	return true
}

// Block lleva el lote a BLOCKED desde cualquier estado salvo CONSUMED (terminal).
// No existe operación inversa.
func (b *Batch) Block(reason, updatedBy string) error {
	if b.Status == BatchStatusConsumed {
		return domain.Invalid("el lote %s ya fue consumido", b.BatchNumber)
	}
	b.Status = BatchStatusBlocked
	b.appendNote(blockedMarker, reason)
	b.touch(updatedBy)
	return nil
}

// AvailableQuantity = Remaining - Allocated.
func (b *Batch) AvailableQuantity() decimal.Decimal {
	return b.RemainingQuantity.Sub(b.AllocatedQuantity)
}

// IsExpired indica si la fecha de vencimiento ya pasó.
func (b *Batch) IsExpired() bool { return b.IsExpiredAt(time.Now()) }

// IsExpiredAt evalúa IsExpired en el instante dado.
func (b *Batch) IsExpiredAt(now time.Time) bool {
	return b.ExpiryDate != nil && now.After(*b.ExpiryDate)
}

// IsExpiringSoon indica si vence dentro de los próximos days días (sin haber vencido).
func (b *Batch) IsExpiringSoon(days int) bool { return b.IsExpiringSoonAt(time.Now(), days) }

// IsExpiringSoonAt evalúa IsExpiringSoon en el instante dado.
func (b *Batch) IsExpiringSoonAt(now time.Time, days int) bool {
	d, ok := b.DaysUntilExpiryAt(now)
	return ok && d > 0 && d <= days
}

// IsActive = ACTIVE y no vencido.
func (b *Batch) IsActive() bool { return b.IsActiveAt(time.Now()) }

// IsActiveAt evalúa IsActive en el instante dado.
func (b *Batch) IsActiveAt(now time.Time) bool {
	return b.Status == BatchStatusActive && !b.IsExpiredAt(now)
}

// CanAllocate indica si se pueden reservar qty unidades ahora.
func (b *Batch) CanAllocate(qty decimal.Decimal) bool {
	return b.AvailableQuantity().GreaterThanOrEqual(qty) && b.IsActive()
}

// DaysUntilExpiry días (redondeados hacia arriba) hasta el vencimiento; ok=false si no tiene fecha.
func (b *Batch) DaysUntilExpiry() (int, bool) { return b.DaysUntilExpiryAt(time.Now()) }

// DaysUntilExpiryAt evalúa DaysUntilExpiry en el instante dado.
func (b *Batch) DaysUntilExpiryAt(now time.Time) (int, bool) {
	if b.ExpiryDate == nil {
		return 0, false
	}
	return int(math.Ceil(b.ExpiryDate.Sub(now).Hours() / 24)), true
}

// AgeInDays días completos desde la cosecha (o desde la creación si no hay cosecha).
func (b *Batch) AgeInDays() int { return b.AgeInDaysAt(time.Now()) }

// AgeInDaysAt evalúa AgeInDays en el instante dado.
func (b *Batch) AgeInDaysAt(now time.Time) int {
	from := b.CreatedAt
	if b.HarvestDate != nil {
		from = *b.HarvestDate
	}
	return int(math.Floor(now.Sub(from).Hours() / 24))
}

// Clone copia profunda (fechas y campos personalizados incluidos).
func (b *Batch) Clone() *Batch {
	if b == nil {
		return nil
	}
	c := *b
	c.HarvestDate = copyTime(b.HarvestDate)
	c.ExpiryDate = copyTime(b.ExpiryDate)
	c.CustomFields = copyFields(b.CustomFields)
	return &c
}

func (b *Batch) touch(updatedBy string) {
	b.Version++
	b.UpdatedAt = time.Now().UTC()
	if updatedBy != "" {
		b.UpdatedBy = updatedBy
	}
}

func (b *Batch) appendNote(marker, reason string) {
	entry := strings.TrimSpace(marker + " " + strings.TrimSpace(reason))
	if b.Notes == "" {
		b.Notes = entry
		return
	}
	b.Notes += "\n" + entry
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyFields(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
