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
	colRecipient    = "领用人"
	colPurpose      = "用途"
	colOutboundTime = "出库时间"
)

var outboundSheet = sheet{
	name:       "出库记录",
	timeColumn: colOutboundTime,
	headers:    []string{colChemical, colAmount, colUnit, colBatchNo, colRecipient, colPurpose, colOutboundTime, colNotes},
	example:    []string{"硫酸", "20", "kg", "B20240101", "张三", "实验", "2024-01-02 14:00:00", ""},
}

// OutboundService handles outbound records. A record is only stored when
// stock covers it; deleting one returns its amount to stock.
type OutboundService struct {
	flow            *flow[movement.OutboundRecord, *movement.OutboundRecord]
	stock           *appinv.Service
	defaultOperator *uuid.UUID
}

// NewOutboundService creates an OutboundService
func NewOutboundService(repos appinv.Repositories, scope appinv.TransactionScope, reconciler *appinv.Reconciler, stock *appinv.Service, defaultOperator *uuid.UUID) *OutboundService {
	return &OutboundService{
		flow:            newFlow[movement.OutboundRecord, *movement.OutboundRecord](names{"outbound record", "出库记录", "操作人"}, repos, scope, reconciler, appinv.Repositories.OutboundRecords),
		stock:           stock,
		defaultOperator: defaultOperator,
	}
}

// Create stores an outbound record and decreases stock. It fails with
// *shared.InsufficientStockError when stock is short.
func (s *OutboundService) Create(ctx context.Context, req OutboundRequest) (*movement.OutboundRecord, error) {
	return s.flow.create(ctx, req.ChemicalID, s.builder(req))
}

// BatchCreate stores every record and its stock decrease, or none of them
func (s *OutboundService) BatchCreate(ctx context.Context, reqs []OutboundRequest) ([]*movement.OutboundRecord, error) {
	drafts := make([]Draft[movement.OutboundRecord, *movement.OutboundRecord], 0, len(reqs))
	for _, req := range reqs {
		drafts = append(drafts, Draft[movement.OutboundRecord, *movement.OutboundRecord]{ChemicalID: req.ChemicalID, Build: s.builder(req)})
	}
	return s.flow.createBatch(ctx, drafts)
}

func (s *OutboundService) builder(req OutboundRequest) func(c *chemical.Chemical) (*movement.OutboundRecord, error) {
	return func(c *chemical.Chemical) (*movement.OutboundRecord, error) {
		return movement.NewOutboundRecord(s.details(req, c))
	}
}

func (s *OutboundService) details(req OutboundRequest, c *chemical.Chemical) movement.OutboundDetails {
	unit := req.Unit
	if unit == "" {
		unit = c.Unit
	}
	operator := req.OperatorID
	if operator == nil {
		operator = s.defaultOperator
	}
	return movement.OutboundDetails{
		ChemicalID:   c.ID,
		ChemicalName: c.Name,
		Amount:       req.Amount,
		Unit:         unit,
		BatchNo:      req.BatchNo,
		Recipient:    req.Recipient,
		Purpose:      req.Purpose,
		OutboundTime: req.OutboundTime.Time,
		OperatorID:   operator,
		Notes:        req.Notes,
	}
}

// Update changes a record. A larger amount must be covered by stock; a
// smaller one returns the difference. Changing the chemical returns the old
// amount to the old chemical and takes the new amount from the new one.
func (s *OutboundService) Update(ctx context.Context, id uuid.UUID, req OutboundRequest) (*movement.OutboundRecord, error) {
	return s.flow.update(ctx, id, req.ChemicalID, func(rec *movement.OutboundRecord, c *chemical.Chemical) error {
		d := s.details(req, c)
		if req.OperatorID == nil {
			d.OperatorID = nil
		}
		return rec.Change(d)
	})
}

// Delete removes a record and returns its amount to stock
func (s *OutboundService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.flow.delete(ctx, id)
}

// Get returns an outbound record
func (s *OutboundService) Get(ctx context.Context, id uuid.UUID) (*movement.OutboundRecord, error) {
	return s.flow.get(ctx, id)
}

// List returns a page of outbound records
func (s *OutboundService) List(ctx context.Context, q ListQuery) (shared.Paginated[movement.OutboundRecord], error) {
	filter, err := q.filter(q.Recipient, q.OperatorID)
	if err != nil {
		return shared.Paginated[movement.OutboundRecord]{}, err
	}
	return s.flow.list(ctx, filter)
}

// Statistics returns daily, monthly and overall outbound totals
func (s *OutboundService) Statistics(ctx context.Context, chemicalID *uuid.UUID) (*Statistics, error) {
	return s.flow.statistics(ctx, movement.Filter{ChemicalID: chemicalID})
}

// ChemicalInventory returns what is on hand for a chemical before an outbound
func (s *OutboundService) ChemicalInventory(ctx context.Context, chemicalID uuid.UUID) (*appinv.ChemicalStock, error) {
	return s.stock.ChemicalStock(ctx, chemicalID)
}

// Export writes the records matching q as a spreadsheet
func (s *OutboundService) Export(ctx context.Context, w io.Writer, format transfer.Format, q ListQuery) error {
	filter, err := q.filter(q.Recipient, q.OperatorID)
	if err != nil {
		return err
	}
	return exportRecords(ctx, s.flow, outboundSheet, w, format, filter, func(r *movement.OutboundRecord) []string {
		return []string{r.ChemicalName, r.Amount.String(), r.Unit, r.BatchNo, r.Recipient, r.Purpose, formatTime(r.OutboundTime), r.Notes}
	})
}

// Template writes an empty import sheet with one example row
func (s *OutboundService) Template(w io.Writer, format transfer.Format) error {
	return outboundSheet.template(w, format)
}

// Import stores every row of an upload, or none when any row is invalid or
// stock cannot cover the rows in file order
func (s *OutboundService) Import(ctx context.Context, r io.Reader, format transfer.Format, operator *uuid.UUID) (*ImportResult, error) {
	return importRecords(ctx, s.flow, outboundSheet, r, format, func(row *transfer.Row, c cells) Draft[movement.OutboundRecord, *movement.OutboundRecord] {
		req := OutboundRequest{
			ChemicalID:   c.ChemicalID,
			Amount:       c.Amount,
			Unit:         c.Unit,
			BatchNo:      c.BatchNo,
			Recipient:    row.Get(colRecipient),
			Purpose:      row.Get(colPurpose),
			OutboundTime: shared.DateTime{Time: c.Time},
			OperatorID:   operator,
			Notes:        c.Notes,
		}
		return Draft[movement.OutboundRecord, *movement.OutboundRecord]{ChemicalID: c.ChemicalID, Build: s.builder(req)}
	})
}
