package identity

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/hazchem/backend/internal/domain/identity"
	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/hazchem/backend/internal/infrastructure/logger"
	"github.com/hazchem/backend/internal/infrastructure/transfer"
	"go.uber.org/zap"
)

var personHeaders = []string{"ID", "姓名", "性别", "手机号", "邮箱", "部门", "职位", "创建时间"}

// PersonService manages personnel records
type PersonService struct {
	persons identity.PersonRepository
}

// NewPersonService creates a new PersonService
func NewPersonService(persons identity.PersonRepository) *PersonService {
	return &PersonService{persons: persons}
}

// List returns a page of people
func (s *PersonService) List(ctx context.Context, q PersonQuery) (*shared.Paginated[identity.Person], error) {
	filter, err := q.filter()
	if err != nil {
		return nil, err
	}
	list, total, err := s.persons.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(list, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Get returns a person by ID
func (s *PersonService) Get(ctx context.Context, id uuid.UUID) (*identity.Person, error) {
	p, err := s.persons.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.ErrNotFound.Code, "人员不存在")
		}
		return nil, err
	}
	return p, nil
}

// Create adds a person
func (s *PersonService) Create(ctx context.Context, req PersonRequest) (*identity.Person, error) {
	p, err := identity.NewPerson(req.profile())
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, p, uuid.Nil); err != nil {
		return nil, err
	}
	if err := applyAccount(p, req); err != nil {
		return nil, err
	}
	if err := s.persons.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Person created", zap.String("person_id", p.ID.String()))
	return p, nil
}

// Update replaces a person's profile. An empty password keeps the current one.
func (s *PersonService) Update(ctx context.Context, req PersonRequest) (*identity.Person, error) {
	if req.ID == uuid.Nil {
		return nil, shared.NewValidationError("id不存在")
	}
	p, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if err := p.UpdateProfile(req.profile()); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, p, p.ID); err != nil {
		return nil, err
	}
	if err := applyAccount(p, req); err != nil {
		return nil, err
	}
	if err := s.persons.Save(ctx, p); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Person updated", zap.String("person_id", p.ID.String()))
	return p, nil
}

// Delete removes a person
func (s *PersonService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.persons.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError(shared.ErrNotFound.Code, "人员不存在")
		}
		return err
	}
	logger.FromContext(ctx).Info("Person deleted", zap.String("person_id", id.String()))
	return nil
}

// BatchDelete removes each person independently; failures do not stop the batch
func (s *PersonService) BatchDelete(ctx context.Context, ids []uuid.UUID) (*BatchDeleteResult, error) {
	if len(ids) == 0 {
		return nil, shared.NewValidationError("请选择要删除的记录")
	}
	result := &BatchDeleteResult{}
	for _, id := range ids {
		if err := s.persons.Delete(ctx, id); err != nil {
			logger.FromContext(ctx).Warn("Batch delete skipped person",
				zap.String("person_id", id.String()), zap.Error(err))
			result.FailedIDs = append(result.FailedIDs, id)
			continue
		}
		result.Deleted++
	}
	return result, nil
}

// Export writes every matching person as a spreadsheet
func (s *PersonService) Export(ctx context.Context, w io.Writer, format transfer.Format, q PersonQuery) error {
	filter, err := q.filter()
	if err != nil {
		return err
	}
	list, err := s.persons.FindAllUnpaged(ctx, filter)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return shared.NewDomainError(shared.ErrNotFound.Code, "没有找到符合条件的数据")
	}
	rows := make([][]string, 0, len(list))
	for i := range list {
		p := &list[i]
		rows = append(rows, []string{
			p.ID.String(),
			p.Name,
			p.Gender,
			p.Phone,
			p.EmailAddress(),
			p.Department,
			p.Position,
			p.CreatedAt.Format(shared.DateTimeLayout),
		})
	}
	logger.FromContext(ctx).Info("Persons exported", zap.Int("count", len(rows)))
	return transfer.Write(w, format, "人员数据", personHeaders, rows)
}

func (s *PersonService) ensureEmailFree(ctx context.Context, p *identity.Person, self uuid.UUID) error {
	email := p.EmailAddress()
	if email == "" {
		return nil
	}
	existing, err := s.persons.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != self {
		return shared.NewDomainError(shared.ErrAlreadyExists.Code, "该邮箱已被使用")
	}
	return nil
}

func applyAccount(p *identity.Person, req PersonRequest) error {
	if strings.TrimSpace(req.Password) != "" {
		if err := p.SetPassword(req.Password); err != nil {
			return err
		}
	}
	if req.UserType != nil {
		if *req.UserType != identity.UserTypeRegular && *req.UserType != identity.UserTypeAdmin {
			return shared.NewValidationError("用户类型无效: %d", *req.UserType)
		}
		p.UserType = *req.UserType
	}
	if req.Status != nil {
		if *req.Status != identity.StatusActive && *req.Status != identity.StatusDisabled {
			return shared.NewValidationError("状态无效: %d", *req.Status)
		}
		p.Status = *req.Status
	}
	return nil
}
