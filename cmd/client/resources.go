package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fidellopezm03/inventory-admin/cmd/internal/cache"
	"github.com/fidellopezm03/inventory-admin/cmd/model"
)

func listQuery(tag cache.Tag, path string) Query {
	return Query{Key: "GET " + path, Path: path, Tags: []cache.Tag{tag}}
}

func write(method string, tag cache.Tag, path string) Mutation {
	return Mutation{Method: method, Path: path, Invalidates: cache.Affected(tag)}
}

func itemPath(collection string, id uint) string {
	return collection + "/" + strconv.FormatUint(uint64(id), 10)
}

// Message is the body of writes that answer with a confirmation text.
type Message struct {
	Message string `json:"message"`
}

const (
	usersPath        = "/api/users"
	categoriesPath   = "/api/categories"
	brandsPath       = "/api/brands"
	productsPath     = "/api/products"
	variantsPath     = "/api/variants"
	suppliersPath    = "/api/suppliers"
	transactionsPath = "/api/transactions"
)

var (
	UsersQuery        = listQuery(cache.TagUser, usersPath)
	CategoriesQuery   = listQuery(cache.TagCategory, categoriesPath)
	BrandsQuery       = listQuery(cache.TagBrand, brandsPath)
	ProductsQuery     = listQuery(cache.TagProduct, productsPath)
	VariantsQuery     = listQuery(cache.TagVariant, variantsPath)
	SuppliersQuery    = listQuery(cache.TagSupplier, suppliersPath)
	TransactionsQuery = listQuery(cache.TagTransaction, transactionsPath)
)

func CategoryByNameQuery(name string) Query {
	return listQuery(cache.TagCategory, categoriesPath+"/byName/"+url.PathEscape(name))
}

// --- users ---

func (c *Client) GetUsers(ctx context.Context) ([]model.User, error) {
	return Fetch[[]model.User](ctx, c, UsersQuery)
}

func (c *Client) AddUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	return sendJSON[*model.User](ctx, c, write(http.MethodPost, cache.TagUser, usersPath), req)
}

func (c *Client) UpdateUser(ctx context.Context, id uint, req model.UpdateUserRequest) (*model.User, error) {
	return sendJSON[*model.User](ctx, c, write(http.MethodPut, cache.TagUser, itemPath(usersPath, id)), req)
}

func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	_, err := mutate[struct{}](ctx, c, write(http.MethodDelete, cache.TagUser, itemPath(usersPath, id)), nil)
	return err
}

// --- categories ---

func (c *Client) GetCategories(ctx context.Context) ([]model.Category, error) {
	return Fetch[[]model.Category](ctx, c, CategoriesQuery)
}

func (c *Client) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	return Fetch[*model.Category](ctx, c, CategoryByNameQuery(name))
}

func (c *Client) AddCategory(ctx context.Context, name string) (*model.Category, error) {
	return sendJSON[*model.Category](ctx, c, write(http.MethodPost, cache.TagCategory, categoriesPath), model.NameRequest{Name: name})
}

func (c *Client) UpdateCategory(ctx context.Context, id uint, name string) (*model.Category, error) {
	return sendJSON[*model.Category](ctx, c, write(http.MethodPut, cache.TagCategory, itemPath(categoriesPath, id)), model.NameRequest{Name: name})
}

func (c *Client) DeleteCategory(ctx context.Context, id uint) error {
	_, err := mutate[struct{}](ctx, c, write(http.MethodDelete, cache.TagCategory, itemPath(categoriesPath, id)), nil)
	return err
}

// --- brands ---

func (c *Client) GetBrands(ctx context.Context) ([]model.Brand, error) {
	return Fetch[[]model.Brand](ctx, c, BrandsQuery)
}

func (c *Client) AddBrand(ctx context.Context, name string) (*model.Brand, error) {
	return sendJSON[*model.Brand](ctx, c, write(http.MethodPost, cache.TagBrand, brandsPath), model.NameRequest{Name: name})
}

func (c *Client) UpdateBrand(ctx context.Context, id uint, name string) (*model.Brand, error) {
	return sendJSON[*model.Brand](ctx, c, write(http.MethodPut, cache.TagBrand, itemPath(brandsPath, id)), model.NameRequest{Name: name})
}

func (c *Client) DeleteBrand(ctx context.Context, id uint) error {
	_, err := mutate[struct{}](ctx, c, write(http.MethodDelete, cache.TagBrand, itemPath(brandsPath, id)), nil)
	return err
}

// --- products ---

func (c *Client) GetProducts(ctx context.Context) ([]model.Product, error) {
	return Fetch[[]model.Product](ctx, c, ProductsQuery)
}

func (c *Client) AddProduct(ctx context.Context, req model.ProductRequest) (*model.Product, error) {
	return sendJSON[*model.Product](ctx, c, write(http.MethodPost, cache.TagProduct, productsPath), req)
}

func (c *Client) UpdateProduct(ctx context.Context, id uint, req model.ProductRequest) (*model.Product, error) {
	return sendJSON[*model.Product](ctx, c, write(http.MethodPut, cache.TagProduct, itemPath(productsPath, id)), req)
}

func (c *Client) DeleteProduct(ctx context.Context, id uint) error {
	_, err := mutate[struct{}](ctx, c, write(http.MethodDelete, cache.TagProduct, itemPath(productsPath, id)), nil)
	return err
}

// --- variants ---

// Image is an upload sent with a variant form.
type Image struct {
	Filename string
	Data     io.Reader
}

func (c *Client) GetVariants(ctx context.Context) ([]model.Variant, error) {
	return Fetch[[]model.Variant](ctx, c, VariantsQuery)
}

// AddVariant posts req as JSON, or as a multipart form when img is not nil.
func (c *Client) AddVariant(ctx context.Context, req model.VariantRequest, img *Image) (*model.Variant, error) {
	return sendVariant(ctx, c, write(http.MethodPost, cache.TagVariant, variantsPath), req, img)
}

// UpdateVariant changes the supplied fields. A nil img keeps the current image.
func (c *Client) UpdateVariant(ctx context.Context, id uint, req model.VariantRequest, img *Image) (*model.Variant, error) {
	return sendVariant(ctx, c, write(http.MethodPut, cache.TagVariant, itemPath(variantsPath, id)), req, img)
}

func (c *Client) DeleteVariant(ctx context.Context, id uint) (string, error) {
	m, err := mutate[Message](ctx, c, write(http.MethodDelete, cache.TagVariant, itemPath(variantsPath, id)), nil)
	return m.Message, err
}

func sendVariant(ctx context.Context, c *Client, m Mutation, req model.VariantRequest, img *Image) (*model.Variant, error) {
	if img == nil {
		return sendJSON[*model.Variant](ctx, c, m, req)
	}
	p, err := variantForm(req, img)
	if err != nil {
		return nil, err
	}
	return mutate[*model.Variant](ctx, c, m, p)
}

func variantForm(req model.VariantRequest, img *Image) (*payload, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.ProductID != nil {
		fields["productId"] = strconv.FormatUint(uint64(*req.ProductID), 10)
	}
	if req.BrandID != nil {
		fields["brandId"] = strconv.FormatUint(uint64(*req.BrandID), 10)
	}
	if req.CategoryID != nil {
		fields["categoryId"] = strconv.FormatUint(uint64(*req.CategoryID), 10)
	}
	if req.Price != nil {
		fields["price"] = req.Price.String()
	}
	if req.Quantity != nil {
		fields["quantity"] = strconv.Itoa(*req.Quantity)
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	part, err := mw.CreateFormFile("image", img.Filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, img.Data); err != nil {
		return nil, fmt.Errorf("copy image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return &payload{contentType: mw.FormDataContentType(), body: &buf}, nil
}

// --- suppliers ---

func (c *Client) GetSuppliers(ctx context.Context) ([]model.Supplier, error) {
	return Fetch[[]model.Supplier](ctx, c, SuppliersQuery)
}

func (c *Client) AddSupplier(ctx context.Context, req model.SupplierRequest) (*model.Supplier, error) {
	return sendJSON[*model.Supplier](ctx, c, write(http.MethodPost, cache.TagSupplier, suppliersPath), req)
}

func (c *Client) UpdateSupplier(ctx context.Context, id uint, req model.SupplierRequest) (*model.Supplier, error) {
	return sendJSON[*model.Supplier](ctx, c, write(http.MethodPut, cache.TagSupplier, itemPath(suppliersPath, id)), req)
}

func (c *Client) DeleteSupplier(ctx context.Context, id uint) (string, error) {
	m, err := mutate[Message](ctx, c, write(http.MethodDelete, cache.TagSupplier, itemPath(suppliersPath, id)), nil)
	return m.Message, err
}

// --- transactions ---

func (c *Client) GetTransactions(ctx context.Context) ([]model.Transaction, error) {
	return Fetch[[]model.Transaction](ctx, c, TransactionsQuery)
}

func (c *Client) AddTransaction(ctx context.Context, req model.TransactionRequest) (*model.Transaction, error) {
	return sendJSON[*model.Transaction](ctx, c, write(http.MethodPost, cache.TagTransaction, transactionsPath), req)
}

func (c *Client) UpdateTransaction(ctx context.Context, id uint, req model.TransactionRequest) (*model.Transaction, error) {
	return sendJSON[*model.Transaction](ctx, c, write(http.MethodPut, cache.TagTransaction, itemPath(transactionsPath, id)), req)
}

func (c *Client) DeleteTransaction(ctx context.Context, id uint) error {
	_, err := mutate[struct{}](ctx, c, write(http.MethodDelete, cache.TagTransaction, itemPath(transactionsPath, id)), nil)
	return err
}

func sendJSON[T any](ctx context.Context, c *Client, m Mutation, body any) (T, error) {
	p, err := jsonBody(body)
	if err != nil {
		var zero T
		return zero, err
	}
	return mutate[T](ctx, c, m, p)
}

// --- session ---

// SignIn exchanges credentials for a session token used by every later call.
func (c *Client) SignIn(ctx context.Context, email, password string) (*model.Principal, error) {
	p, err := jsonBody(model.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	b, _, err := c.do(ctx, http.MethodPost, "/auth/signin", p)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Token string           `json:"token"`
		User  *model.Principal `json:"user"`
	}
	if err := json.Unmarshal(b, &resp); err != nil {
		return nil, err
	}
	c.setToken(resp.Token)
	return resp.User, nil
}

func (c *Client) Session(ctx context.Context) (*model.Principal, error) {
	b, _, err := c.do(ctx, http.MethodGet, "/auth/session", nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		User *model.Principal `json:"user"`
	}
	if err := json.Unmarshal(b, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}
