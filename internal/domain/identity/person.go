package identity

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hazchem/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// User types
const (
	UserTypeRegular = 0
	UserTypeAdmin   = 1
)

// Account status
const (
	StatusDisabled = 0
	StatusActive   = 1
)

// Genders accepted by the personnel form
var validGenders = map[string]bool{"男": true, "女": true, "其他": true}

var (
	phoneRegex = regexp.MustCompile(`^1[1-9]\d{9}$`)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// bcryptCost is a variable so tests can lower it
var bcryptCost = bcrypt.DefaultCost

// Person is an operator or user. Movement records reference it; inventory
// logic never changes it.
type Person struct {
	shared.BaseEntity
	Name         string     `gorm:"type:varchar(50);not null;index" json:"name"`
	Gender       string     `gorm:"type:varchar(10)" json:"gender"`
	Phone        string     `gorm:"type:varchar(20);index" json:"phone"`
	Email        *string    `gorm:"type:varchar(200);uniqueIndex" json:"email"`
	Department   string     `gorm:"type:varchar(50)" json:"department"`
	Position     string     `gorm:"type:varchar(50)" json:"position"`
	PasswordHash string     `gorm:"type:varchar(255)" json:"-"`
	UserType     int        `gorm:"not null;default:0" json:"userType"`
	Status       int        `gorm:"not null" json:"status"`
	LastLoginAt  *time.Time `json:"lastLoginTime"`
}

// TableName returns the table name for GORM
func (Person) TableName() string {
	return "persons"
}

// Profile carries the editable personnel fields
type Profile struct {
	Name       string
	Gender     string
	Phone      string
	Email      string
	Department string
	Position   string
}

// NewPerson creates an active regular person after validating the profile
func NewPerson(p Profile) (*Person, error) {
	person := &Person{
		BaseEntity: shared.NewBaseEntity(),
		UserType:   UserTypeRegular,
		Status:     StatusActive,
	}
	if err := person.apply(p); err != nil {
		return nil, err
	}
	return person, nil
}

// UpdateProfile replaces the profile fields after validation
func (p *Person) UpdateProfile(profile Profile) error {
	if err := p.apply(profile); err != nil {
		return err
	}
	p.Touch()
	return nil
}

func (p *Person) apply(profile Profile) error {
	if err := ValidateProfile(profile); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(profile.Name)
	p.Gender = strings.TrimSpace(profile.Gender)
	p.Phone = strings.TrimSpace(profile.Phone)
	p.Department = profile.Department
	p.Position = profile.Position
	if email := strings.TrimSpace(profile.Email); email != "" {
		email = strings.ToLower(email)
		p.Email = &email
	} else {
		p.Email = nil
	}
	return nil
}

// EmailAddress returns the email or an empty string
func (p *Person) EmailAddress() string {
	if p.Email == nil {
		return ""
	}
	return *p.Email
}

// SetPassword stores a bcrypt hash. Values that already look like bcrypt
// hashes are stored unchanged.
func (p *Person) SetPassword(password string) error {
	password = strings.TrimSpace(password)
	if password == "" {
		return shared.NewValidationError("密码不能为空")
	}
	if IsBcryptHash(password) {
		p.PasswordHash = password
		return nil
	}
	if len(password) > 72 {
		return shared.NewValidationError("密码长度不能超过72个字节")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "密码加密失败")
	}
	p.PasswordHash = string(hash)
	return nil
}

// VerifyPassword verifies if the provided password matches
func (p *Person) VerifyPassword(password string) bool {
	if p.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) == nil
}

// IsActive reports whether the account may log in
func (p *Person) IsActive() bool {
	return p.Status != StatusDisabled
}

// RecordLogin stamps the last login time
func (p *Person) RecordLogin(at time.Time) {
	p.LastLoginAt = &at
	p.Touch()
}

// IsBcryptHash reports whether s carries a bcrypt prefix
func IsBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// ValidateProfile applies the personnel form rules
func ValidateProfile(p Profile) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return shared.NewValidationError("姓名不能为空")
	}
	if utf8.RuneCountInString(name) > 50 {
		return shared.NewValidationError("姓名长度必须在1-50个字符之间")
	}
	if g := strings.TrimSpace(p.Gender); g != "" && !validGenders[g] {
		return shared.NewValidationError("性别只能是男、女或其他")
	}
	if ph := strings.TrimSpace(p.Phone); ph != "" && !phoneRegex.MatchString(ph) {
		return shared.NewValidationError("请输入正确的手机号码")
	}
	if e := strings.TrimSpace(p.Email); e != "" && !emailRegex.MatchString(e) {
		return shared.NewValidationError("请输入正确的邮箱地址")
	}
	if utf8.RuneCountInString(p.Department) > 50 {
		return shared.NewValidationError("部门名称不能超过50个字符")
	}
	if utf8.RuneCountInString(p.Position) > 50 {
		return shared.NewValidationError("职位名称不能超过50个字符")
	}
	return nil
}

// RegisterRecord logs where a self-registration came from
type RegisterRecord struct {
	shared.BaseEntity
	PersonID string `gorm:"type:varchar(36);not null;index" json:"personId"`
	IP       string `gorm:"type:varchar(64)" json:"ip"`
	Channel  string `gorm:"type:varchar(20);not null;default:'web'" json:"channel"`
}

// TableName returns the table name for GORM
func (RegisterRecord) TableName() string {
	return "register_records"
}

// NewRegisterRecord creates a register record, defaulting the channel to web
func NewRegisterRecord(personID, ip, channel string) *RegisterRecord {
	if channel == "" {
		channel = "web"
	}
	return &RegisterRecord{
		BaseEntity: shared.NewBaseEntity(),
		PersonID:   personID,
		IP:         ip,
		Channel:    channel,
	}
}
