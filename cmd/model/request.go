package model

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError is returned when a request body is missing a required field or carries
// a value outside its allowed set. Handlers answer it with 400 and its message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// --- users ---

// MinPasswordLen applies to every password a client sets.
const MinPasswordLen = 8

func shortPassword(pw string) error {
	if len(pw) < MinPasswordLen {
		return Invalid("Password must be at least %d characters", MinPasswordLen)
	}
	return nil
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

func (req *CreateUserRequest) Bind(r *http.Request) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return Invalid("Name, email, and password are required")
	}
	if err := shortPassword(req.Password); err != nil {
		return err
	}
	if req.Role == "" {
		req.Role = RoleUser
		return nil
	}
	role, ok := ParseRole(string(req.Role))
	if !ok {
		return Invalid("Invalid role %q", req.Role)
	}
	req.Role = role
	return nil
}

type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

func (req *UpdateUserRequest) Bind(r *http.Request) error {
	if req.Name == nil && req.Email == nil && req.Role == nil && req.Password == nil {
		return Invalid("No valid fields to update")
	}
	req.Name = trimmed(req.Name)
	if req.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &e
	}
	if (req.Name != nil && *req.Name == "") || (req.Email != nil && *req.Email == "") {
		return Invalid("Name and email cannot be empty")
	}
	if req.Password != nil {
		if *req.Password == "" {
			return Invalid("Password cannot be empty")
		}
		if err := shortPassword(*req.Password); err != nil {
			return err
		}
	}
	if req.Role != nil {
		role, ok := ParseRole(*req.Role)
		if !ok {
			return Invalid("Invalid role %q", *req.Role)
		}
		s := string(role)
		req.Role = &s
	}
	return nil
}

// --- categories and brands ---

// NameRequest is the body of category and brand writes.
type NameRequest struct {
	Name string `json:"name"`
}

func (req *NameRequest) Bind(r *http.Request) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return Invalid("Name is required")
	}
	return nil
}

// --- products ---

type ProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *uint            `json:"categoryId"`
	BrandID     *uint            `json:"brandId"`
}

func (req *ProductRequest) Bind(r *http.Request) error {
	req.Name = trimmed(req.Name)
	if req.BrandID != nil && *req.BrandID == 0 {
		req.BrandID = nil
	}
	if r.Method == http.MethodPost {
		if blank(req.Name) || req.CategoryID == nil || *req.CategoryID == 0 || req.Price == nil {
			return Invalid("Name, categoryId and price are required")
		}
		return nil
	}
	if req.Name == nil && req.Description == nil && req.Price == nil && req.CategoryID == nil && req.BrandID == nil {
		return Invalid("No valid fields to update")
	}
	if req.Name != nil && *req.Name == "" {
		return Invalid("Name cannot be empty")
	}
	if req.CategoryID != nil && *req.CategoryID == 0 {
		return Invalid("Invalid categoryId")
	}
	return nil
}

// --- variants ---

// VariantRequest is decoded from JSON or from a multipart form (see ParseVariantForm).
// Image uploads are handled by the caller; ImageURL is only set from JSON bodies or by
// the upload store.
type VariantRequest struct {
	Name       *string          `json:"name"`
	ProductID  *uint            `json:"productId"`
	BrandID    *uint            `json:"brandId"`
	CategoryID *uint            `json:"categoryId"`
	ImageURL   *string          `json:"imageUrl"`
	Price      *decimal.Decimal `json:"price"`
	Quantity   *int             `json:"quantity"`
	Status     *string          `json:"status"`
}

func (req *VariantRequest) Bind(r *http.Request) error {
	return req.Validate(r.Method == http.MethodPost)
}

// Validate applies the create (all required fields present) or update (at least one field)
// rules and canonicalizes the status.
func (req *VariantRequest) Validate(create bool) error {
	req.Name = trimmed(req.Name)
	if req.ProductID != nil && *req.ProductID == 0 {
		req.ProductID = nil
	}
	if create {
		if blank(req.Name) || req.BrandID == nil || *req.BrandID == 0 || req.CategoryID == nil ||
			*req.CategoryID == 0 || req.Price == nil || req.Quantity == nil {
			return Invalid("Missing required fields")
		}
		if req.Status == nil || strings.TrimSpace(*req.Status) == "" {
			s := string(StatusInStock)
			req.Status = &s
		}
	} else {
		if req.Name == nil && req.ProductID == nil && req.BrandID == nil && req.CategoryID == nil &&
			req.ImageURL == nil && req.Price == nil && req.Quantity == nil && req.Status == nil {
			return Invalid("No valid fields to update")
		}
		if req.Name != nil && *req.Name == "" {
			return Invalid("Name cannot be empty")
		}
		if (req.BrandID != nil && *req.BrandID == 0) || (req.CategoryID != nil && *req.CategoryID == 0) {
			return Invalid("Invalid brandId or categoryId")
		}
	}
	if req.Status != nil {
		st, ok := ParseVariantStatus(*req.Status)
		if !ok {
			return Invalid("Invalid status %q", *req.Status)
		}
		s := string(st)
		req.Status = &s
	}
	return nil
}

// ParseVariantForm reads the text parts of a multipart variant form. Absent or empty
// parts stay nil.
func ParseVariantForm(form url.Values) (*VariantRequest, error) {
	req := &VariantRequest{}
	get := func(key string) (string, bool) {
		v := strings.TrimSpace(form.Get(key))
		return v, v != ""
	}
	if v, ok := get("name"); ok {
		req.Name = &v
	}
	if v, ok := get("status"); ok {
		req.Status = &v
	}
	if v, ok := get("imageUrl"); ok {
		req.ImageURL = &v
	}
	for key, dst := range map[string]**uint{"productId": &req.ProductID, "brandId": &req.BrandID, "categoryId": &req.CategoryID} {
		v, ok := get(key)
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, Invalid("Invalid %s", key)
		}
		id := uint(n)
		*dst = &id
	}
	if v, ok := get("price"); ok {
		p, err := decimal.NewFromString(v)
		if err != nil {
			return nil, Invalid("Invalid price")
		}
		req.Price = &p
	}
	if v, ok := get("quantity"); ok {
		q, err := strconv.Atoi(v)
		if err != nil {
			return nil, Invalid("Invalid quantity")
		}
		req.Quantity = &q
	}
	return req, nil
}

// --- suppliers ---

type SupplierRequest struct {
	Name    *string `json:"name"`
	Contact *string `json:"contact"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

func (req *SupplierRequest) Bind(r *http.Request) error {
	req.Name = trimmed(req.Name)
	if r.Method == http.MethodPost {
		if blank(req.Name) {
			return Invalid("Name is required")
		}
		return nil
	}
	if req.Name == nil && req.Contact == nil && req.Email == nil && req.Address == nil {
		return Invalid("No valid fields to update")
	}
	if req.Name != nil && *req.Name == "" {
		return Invalid("Name cannot be empty")
	}
	return nil
}

// --- transactions ---

type TransactionRequest struct {
	VariantID *uint   `json:"variantId"`
	Type      *string `json:"type"`
	Quantity  *int    `json:"quantity"`
	Note      *string `json:"note"`
}

func (req *TransactionRequest) Bind(r *http.Request) error {
	if r.Method == http.MethodPost {
		if req.VariantID == nil || *req.VariantID == 0 || blank(req.Type) || req.Quantity == nil {
			return Invalid("variantId, type and quantity are required")
		}
	} else if req.VariantID == nil && req.Type == nil && req.Quantity == nil && req.Note == nil {
		return Invalid("No valid fields to update")
	}
	if req.VariantID != nil && *req.VariantID == 0 {
		return Invalid("Invalid variantId")
	}
	if req.Type != nil {
		tt, ok := ParseTransactionType(*req.Type)
		if !ok {
			return Invalid("Invalid transaction type %q", *req.Type)
		}
		s := string(tt)
		req.Type = &s
	}
	return nil
}

// --- auth ---

type SignInRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (req *SignInRequest) Bind(r *http.Request) error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return Invalid("Email and password are required")
	}
	return nil
}

type SignUpRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (req *SignUpRequest) Bind(r *http.Request) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return Invalid("Name, email, and password are required")
	}
	return shortPassword(req.Password)
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

func (req *ChangePasswordRequest) Bind(r *http.Request) error {
	if req.OldPassword == "" || req.NewPassword == "" {
		return Invalid("oldPassword and newPassword are required")
	}
	return shortPassword(req.NewPassword)
}
