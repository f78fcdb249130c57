package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/hazchem/backend/internal/domain/identity"
	"github.com/hazchem/backend/internal/domain/shared"
)

// LoginRequest contains the input for login. UserType, when given, must
// match the account's type.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
	UserType *int   `json:"userType" binding:"omitempty,oneof=0 1"`
}

// LoginResult is returned after a successful login
type LoginResult struct {
	User      *identity.Person `json:"user"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

// RegisterRequest contains the input for self-registration
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Name            string `json:"name" binding:"required,max=50"`
	Password        string `json:"password" binding:"required,min=6,max=72"`
	UserType        *int   `json:"userType" binding:"omitempty,oneof=0 1"`
	RegisterIP      string `json:"registerIp"`
	RegisterChannel string `json:"registerChannel"`
}

// PersonRequest contains the editable fields of a person. Password is
// hashed unless it already is a bcrypt hash; empty keeps the current one.
type PersonRequest struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name" binding:"required"`
	Gender     string    `json:"gender"`
	Phone      string    `json:"phone" binding:"omitempty,mobile"`
	Email      string    `json:"email" binding:"omitempty,email"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	Password   string    `json:"password"`
	UserType   *int      `json:"userType" binding:"omitempty,oneof=0 1"`
	Status     *int      `json:"status" binding:"omitempty,oneof=0 1"`
}

func (r PersonRequest) profile() identity.Profile {
	return identity.Profile{
		Name:       r.Name,
		Gender:     r.Gender,
		Phone:      r.Phone,
		Email:      r.Email,
		Department: r.Department,
		Position:   r.Position,
	}
}

// PersonQuery contains the personnel list filters. Text fields match substrings.
type PersonQuery struct {
	Name       string `form:"name"`
	Phone      string `form:"phone"`
	Gender     string `form:"gender"`
	Email      string `form:"email"`
	Department string `form:"department"`
	Position   string `form:"position"`
	StartTime  string `form:"startTime"`
	EndTime    string `form:"endTime"`
	Current    int    `form:"current"`
	Size       int    `form:"size"`
	OrderBy    string `form:"orderBy"`
	OrderDir   string `form:"orderDir"`
}

func (q PersonQuery) filter() (identity.PersonFilter, error) {
	start, end, err := shared.ParseTimeRange(q.StartTime, q.EndTime)
	if err != nil {
		return identity.PersonFilter{}, err
	}
	f := identity.PersonFilter{
		Filter: shared.Filter{
			Page:      q.Current,
			PageSize:  q.Size,
			OrderBy:   q.OrderBy,
			OrderDir:  q.OrderDir,
			StartTime: start,
			EndTime:   end,
		},
		Name:       q.Name,
		Phone:      q.Phone,
		Gender:     q.Gender,
		Email:      q.Email,
		Department: q.Department,
		Position:   q.Position,
	}
	f.Normalize()
	return f, nil
}

// BatchDeleteResult reports how a batch delete went. FailedIDs is empty
// when every person was removed.
type BatchDeleteResult struct {
	Deleted   int         `json:"deleted"`
	FailedIDs []uuid.UUID `json:"failedIds,omitempty"`
}

// Partial reports whether some deletions failed
func (r BatchDeleteResult) Partial() bool {
	return len(r.FailedIDs) > 0
}
