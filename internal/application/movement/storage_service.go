package movement

import (
	"context"
	"io"

	"github.com/google/uuid"
	appinv "github.com/hazchem/backend/internal/application/inventory"
	"github.com/hazchem/backend/internal/domain/chemical"
	"github.com/hazchem/backend/internal/domain/movement"
	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/hazchem/backend/internal/infrastructure/transfer"
)

const (
	colSupplier    = "供应商"
	colStorageTime = "入库时间"
)

var storageSheet = sheet{
	name:       "入库记录",
	timeColumn: colStorageTime,
	headers:    []string{colChemical, colAmount, colUnit, colBatchNo, colSupplier, colStorageTime, colNotes},
	example:    []string{"硫酸", "50", "kg", "B20240101", "示例供应商", "2024-01-01 09:00:00", ""},
}

// StorageService handles storage-in records. Creating one adds its amount
// to stock; deleting one takes it away again.
type StorageService struct {
	flow            *flow[movement.StorageRecord, *movement.StorageRecord]
	defaultOperator *uuid.UUID
}

// NewStorageService creates a StorageService. defaultOperator is recorded
// when a request names no operator; it may be nil.
func NewStorageService(repos appinv.Repositories, scope appinv.TransactionScope, reconciler *appinv.Reconciler, defaultOperator *uuid.UUID) *StorageService {
	return &StorageService{
		flow:            newFlow[movement.StorageRecord, *movement.StorageRecord](names{"storage record", "入库记录", "操作人"}, repos, scope, reconciler, appinv.Repositories.StorageRecords),
		defaultOperator: defaultOperator,
	}
}

// Create stores a storage-in record and increases stock
func (s *StorageService) Create(ctx context.Context, req StorageRequest) (*movement.StorageRecord, error) {
	return s.flow.create(ctx, req.ChemicalID, s.builder(req))
}

// BatchCreate stores every record and its stock increase, or none of them
func (s *StorageService) BatchCreate(ctx context.Context, reqs []StorageRequest) ([]*movement.StorageRecord, error) {
	drafts := make([]Draft[movement.StorageRecord, *movement.StorageRecord], 0, len(reqs))
	for _, req := range reqs {
		drafts = append(drafts, Draft[movement.StorageRecord, *movement.StorageRecord]{ChemicalID: req.ChemicalID, Build: s.builder(req)})
	}
	return s.flow.createBatch(ctx, drafts)
}

func (s *StorageService) builder(req StorageRequest) func(c *chemical.Chemical) (*movement.StorageRecord, error) {
	return func(c *chemical.Chemical) (*movement.StorageRecord, error) {
		return movement.NewStorageRecord(s.details(req, c))
	}
}

func (s *StorageService) details(req StorageRequest, c *chemical.Chemical) movement.StorageDetails {
	unit := req.Unit
	if unit == "" {
		unit = c.Unit
	}
	operator := req.OperatorID
	if operator == nil {
		operator = s.defaultOperator
	}
	return movement.StorageDetails{
		ChemicalID:   c.ID,
		ChemicalName: c.Name,
		Amount:       req.Amount,
		Unit:         unit,
		BatchNo:      req.BatchNo,
		Supplier:     req.Supplier,
		StorageTime:  req.StorageTime.Time,
		OperatorID:   operator,
		Notes:        req.Notes,
	}
}

// Update changes a record; stock moves by the difference, or from the old
// chemical to the new one when the chemical changes
func (s *StorageService) Update(ctx context.Context, id uuid.UUID, req StorageRequest) (*movement.StorageRecord, error) {
	return s.flow.update(ctx, id, req.ChemicalID, func(rec *movement.StorageRecord, c *chemical.Chemical) error {
		d := s.details(req, c)
		if req.OperatorID == nil {
			d.OperatorID = nil
		}
		return rec.Change(d)
	})
}

// Delete removes a record and decreases stock by its amount
func (s *StorageService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.flow.delete(ctx, id)
}

// Get returns a storage-in record
func (s *StorageService) Get(ctx context.Context, id uuid.UUID) (*movement.StorageRecord, error) {
	return s.flow.get(ctx, id)
}

// List returns a page of storage-in records
func (s *StorageService) List(ctx context.Context, q ListQuery) (shared.Paginated[movement.StorageRecord], error) {
	filter, err := q.filter(q.Supplier, q.OperatorID)
	if err != nil {
		return shared.Paginated[movement.StorageRecord]{}, err
	}
	return s.flow.list(ctx, filter)
}

// Statistics returns daily, monthly and overall storage-in totals
func (s *StorageService) Statistics(ctx context.Context, chemicalID *uuid.UUID) (*Statistics, error) {
	return s.flow.statistics(ctx, movement.Filter{ChemicalID: chemicalID})
}

// Export writes the records matching q as a spreadsheet
func (s *StorageService) Export(ctx context.Context, w io.Writer, format transfer.Format, q ListQuery) error {
	filter, err := q.filter(q.Supplier, q.OperatorID)
	if err != nil {
		return err
	}
	return exportRecords(ctx, s.flow, storageSheet, w, format, filter, func(r *movement.StorageRecord) []string {
		return []string{r.ChemicalName, r.Amount.String(), r.Unit, r.BatchNo, r.Supplier, formatTime(r.StorageTime), r.Notes}
	})
}

// Template writes an empty import sheet with one example row
func (s *StorageService) Template(w io.Writer, format transfer.Format) error {
	return storageSheet.template(w, format)
}

// Import stores every row of an upload, or none when any row is invalid
func (s *StorageService) Import(ctx context.Context, r io.Reader, format transfer.Format, operator *uuid.UUID) (*ImportResult, error) {
	return importRecords(ctx, s.flow, storageSheet, r, format, func(row *transfer.Row, c cells) Draft[movement.StorageRecord, *movement.StorageRecord] {
		req := StorageRequest{
			ChemicalID:  c.ChemicalID,
			Amount:      c.Amount,
			Unit:        c.Unit,
			BatchNo:     c.BatchNo,
			Supplier:    row.Get(colSupplier),
			StorageTime: shared.DateTime{Time: c.Time},
			OperatorID:  operator,
			Notes:       c.Notes,
		}
		return Draft[movement.StorageRecord, *movement.StorageRecord]{ChemicalID: c.ChemicalID, Build: s.builder(req)}
	})
}
