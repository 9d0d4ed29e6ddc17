// Package docs registers the OpenAPI documents served at /swagger/*any, one
// swag instance per service. Paths are rendered from the operation tables
// below; Diff checks a router against them.
package docs

import (
	"encoding/json"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"

	"github.com/MikeMC777/decor-ecom/internal/module"
)

const (
	ProductInstance = "product"
	OrderInstance   = "order"
	UserInstance    = "user"
)

const header = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "definitions": {
        "ErrorBody": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "validation failed"},
                "details": {"type": "array", "items": {"type": "string"}}
            }
        }
    },
`

// Operation is one documented route. Path uses gin syntax; path parameters
// are taken from its :name segments.
type Operation struct {
	Method  string
	Path    string
	Tag     string
	Summary string
	Secured bool
	Form    bool     // also accepts multipart/form-data
	Query   []string // name:type
	Codes   []int
}

// perModule mounts ops under every module prefix.
func perModule(ops ...Operation) []Operation {
	var out []Operation
	for _, m := range module.All {
		for _, op := range ops {
			op.Path = m.Prefix() + op.Path
			out = append(out, op)
		}
	}
	return out
}

var paging = []string{"limit:integer", "offset:integer"}

var ProductOperations = perModule(
	Operation{Method: http.MethodGet, Path: "/categories", Tag: "categories", Summary: "List the module's categories in display order", Query: []string{"active:boolean"}, Codes: []int{200}},
	Operation{Method: http.MethodPost, Path: "/categories", Tag: "categories", Summary: "Create a category", Secured: true, Form: true, Codes: []int{201, 400}},
	Operation{Method: http.MethodPut, Path: "/categories/reorder", Tag: "categories", Summary: "Persist the full display order of the module's categories", Secured: true, Codes: []int{200, 400}},
	Operation{Method: http.MethodGet, Path: "/categories/:id", Tag: "categories", Summary: "Get a category", Codes: []int{200, 404}},
	Operation{Method: http.MethodPut, Path: "/categories/:id", Tag: "categories", Summary: "Partially update a category; version enables compare-and-swap", Secured: true, Form: true, Codes: []int{200, 400, 404, 409}},
	Operation{Method: http.MethodPatch, Path: "/categories/:id/active", Tag: "categories", Summary: "Toggle category visibility", Secured: true, Codes: []int{200, 404}},
	Operation{Method: http.MethodDelete, Path: "/categories/:id", Tag: "categories", Summary: "Delete a category", Secured: true, Codes: []int{204, 404}},
	Operation{Method: http.MethodGet, Path: "/categories/:id/subcategories", Tag: "subcategories", Summary: "List sub-categories of a category", Query: []string{"active:boolean"}, Codes: []int{200, 404}},
	Operation{Method: http.MethodPost, Path: "/categories/:id/subcategories", Tag: "subcategories", Summary: "Create a sub-category", Secured: true, Form: true, Codes: []int{201, 400, 404}},
	Operation{Method: http.MethodPut, Path: "/categories/:id/subcategories/reorder", Tag: "subcategories", Summary: "Persist the full display order of a category's children", Secured: true, Codes: []int{200, 400, 404}},
	Operation{Method: http.MethodGet, Path: "/subcategories/:id", Tag: "subcategories", Summary: "Get a sub-category", Codes: []int{200, 404}},
	Operation{Method: http.MethodPut, Path: "/subcategories/:id", Tag: "subcategories", Summary: "Partially update a sub-category", Secured: true, Form: true, Codes: []int{200, 400, 404, 409}},
	Operation{Method: http.MethodPatch, Path: "/subcategories/:id/active", Tag: "subcategories", Summary: "Toggle sub-category visibility", Secured: true, Codes: []int{200, 404}},
	Operation{Method: http.MethodDelete, Path: "/subcategories/:id", Tag: "subcategories", Summary: "Delete a sub-category", Secured: true, Codes: []int{204, 404}},
	Operation{Method: http.MethodGet, Path: "/products", Tag: "products", Summary: "List products with filters and paging",
		Query: append([]string{"q:string", "categoryId:string", "subCategoryId:string", "bestSeller:boolean", "trending:boolean", "mostLoved:boolean"}, paging...), Codes: []int{200, 400}},
	Operation{Method: http.MethodPost, Path: "/products", Tag: "products", Summary: "Create a product", Secured: true, Form: true, Codes: []int{201, 400}},
	Operation{Method: http.MethodPost, Path: "/products/upload", Tag: "products", Summary: "Create a product with image1..image10 uploads", Secured: true, Form: true, Codes: []int{201, 400}},
	Operation{Method: http.MethodGet, Path: "/products/:id", Tag: "products", Summary: "Get a product", Codes: []int{200, 404}},
	Operation{Method: http.MethodPut, Path: "/products/:id", Tag: "products", Summary: "Partially update a product", Secured: true, Form: true, Codes: []int{200, 400, 404}},
	Operation{Method: http.MethodPut, Path: "/products/:id/upload", Tag: "products", Summary: "Partially update a product; an uploaded imageN replaces slot N", Secured: true, Form: true, Codes: []int{200, 400, 404}},
	Operation{Method: http.MethodDelete, Path: "/products/:id", Tag: "products", Summary: "Delete a product", Secured: true, Codes: []int{204, 404}},
	Operation{Method: http.MethodPatch, Path: "/products/:id/stock", Tag: "products", Summary: "Atomically adjust stock by a delta", Secured: true, Codes: []int{200, 404, 409}},
)

var OrderOperations = append([]Operation{
	{Method: http.MethodGet, Path: "/api/cart/:ownerId", Tag: "cart", Summary: "Get a cart with totals", Codes: []int{200}},
	{Method: http.MethodDelete, Path: "/api/cart/:ownerId", Tag: "cart", Summary: "Clear a cart", Codes: []int{200}},
	{Method: http.MethodPost, Path: "/api/cart/:ownerId/items", Tag: "cart", Summary: "Add a product; the same product increments quantity", Codes: []int{200, 400, 404, 409, 502}},
	{Method: http.MethodPatch, Path: "/api/cart/:ownerId/items/:productId", Tag: "cart", Summary: "Set a line quantity (min 1)", Codes: []int{200, 404}},
	{Method: http.MethodDelete, Path: "/api/cart/:ownerId/items/:productId", Tag: "cart", Summary: "Remove a line", Codes: []int{200, 404}},
	{Method: http.MethodPost, Path: "/api/checkout", Tag: "orders", Summary: "Place an order from the cart lines of one module", Codes: []int{201, 400, 409, 422, 502}},
	{Method: http.MethodGet, Path: "/api/orders/customer/:customerId", Tag: "orders", Summary: "Order history of one customer, matched by id and email", Query: append([]string{"email:string"}, paging...), Codes: []int{200, 400}},
	{Method: http.MethodGet, Path: "/api/vendor/orders", Tag: "orders", Summary: "Orders assigned to the calling vendor", Secured: true, Query: append([]string{"status:string"}, paging...), Codes: []int{200, 401}},
	{Method: http.MethodGet, Path: "/api/orders/json", Tag: "orders", Summary: "List service orders", Secured: true, Query: append([]string{"status:string", "customerId:string"}, paging...), Codes: []int{200, 400}},
	{Method: http.MethodGet, Path: "/api/shop/orders", Tag: "orders", Summary: "List shop orders", Secured: true, Query: append([]string{"status:string", "customerId:string"}, paging...), Codes: []int{200, 400}},
	{Method: http.MethodGet, Path: "/api/coupons", Tag: "coupons", Summary: "List coupons with display labels", Secured: true, Codes: []int{200}},
	{Method: http.MethodPost, Path: "/api/coupons", Tag: "coupons", Summary: "Create a coupon", Secured: true, Codes: []int{201, 400, 409}},
	{Method: http.MethodGet, Path: "/api/coupons/:id", Tag: "coupons", Summary: "Get a coupon", Secured: true, Codes: []int{200, 404}},
	{Method: http.MethodPut, Path: "/api/coupons/:id", Tag: "coupons", Summary: "Update a coupon", Secured: true, Codes: []int{200, 400, 404, 409}},
	{Method: http.MethodDelete, Path: "/api/coupons/:id", Tag: "coupons", Summary: "Delete a coupon", Secured: true, Codes: []int{204, 404}},
	{Method: http.MethodPost, Path: "/api/coupons/validate", Tag: "coupons", Summary: "Preview a coupon discount", Codes: []int{200, 400, 422}},
}, perModule(
	Operation{Method: http.MethodPost, Path: "/orders", Tag: "orders", Summary: "Place an order from explicit items", Codes: []int{201, 400, 404, 409, 422, 502}},
	Operation{Method: http.MethodGet, Path: "/orders/statuses", Tag: "orders", Summary: "Allowed statuses for the module", Codes: []int{200}},
	Operation{Method: http.MethodGet, Path: "/orders/:id", Tag: "orders", Summary: "Get an order", Secured: true, Codes: []int{200, 403, 404}},
	Operation{Method: http.MethodPut, Path: "/orders/:id/status", Tag: "orders", Summary: "Move an order to its next status or cancel it", Secured: true, Codes: []int{200, 400, 403, 404, 409}},
	Operation{Method: http.MethodPut, Path: "/orders/:id/vendor", Tag: "orders", Summary: "Assign a vendor to an order", Secured: true, Codes: []int{200, 403, 404}},
)...)

var UserOperations = []Operation{
	{Method: http.MethodPost, Path: "/api/admin/auth/login", Tag: "auth", Summary: "Admin login", Codes: []int{200, 400, 401}},
	{Method: http.MethodGet, Path: "/api/admin/auth/verify", Tag: "auth", Summary: "Verify an admin token", Secured: true, Codes: []int{200, 401}},
	{Method: http.MethodPost, Path: "/api/admin/auth/logout", Tag: "auth", Summary: "Revoke the current admin session", Secured: true, Codes: []int{204, 401}},
	{Method: http.MethodPost, Path: "/api/vendor/auth/login", Tag: "auth", Summary: "Vendor login", Codes: []int{200, 400, 401}},
	{Method: http.MethodGet, Path: "/api/vendor/auth/verify", Tag: "auth", Summary: "Verify a vendor token", Secured: true, Codes: []int{200, 401}},
	{Method: http.MethodPost, Path: "/api/vendor/auth/logout", Tag: "auth", Summary: "Revoke the current vendor session", Secured: true, Codes: []int{204, 401}},
	{Method: http.MethodGet, Path: "/api/admin/vendors", Tag: "vendors", Summary: "List vendors", Secured: true, Codes: []int{200}},
	{Method: http.MethodPost, Path: "/api/admin/vendors", Tag: "vendors", Summary: "Create a vendor", Secured: true, Codes: []int{201, 400, 409}},
	{Method: http.MethodGet, Path: "/api/admin/vendors/:id", Tag: "vendors", Summary: "Get a vendor", Secured: true, Codes: []int{200, 404}},
	{Method: http.MethodPut, Path: "/api/admin/vendors/:id", Tag: "vendors", Summary: "Update a vendor", Secured: true, Codes: []int{200, 400, 404, 409}},
	{Method: http.MethodDelete, Path: "/api/admin/vendors/:id", Tag: "vendors", Summary: "Delete a vendor", Secured: true, Codes: []int{204, 404}},
	{Method: http.MethodGet, Path: "/api/venues", Tag: "venues", Summary: "Active vendors, optionally by city", Query: []string{"city:string"}, Codes: []int{200}},
}

var ginParam = regexp.MustCompile(`:([A-Za-z]+)`)

// swaggerPath turns /orders/:id into /orders/{id}.
func swaggerPath(p string) string { return ginParam.ReplaceAllString(p, "{$1}") }

func render(ops []Operation) string {
	paths := map[string]map[string]any{}
	for _, op := range ops {
		var params []map[string]any
		for _, m := range ginParam.FindAllStringSubmatch(op.Path, -1) {
			params = append(params, map[string]any{"name": m[1], "in": "path", "required": true, "type": "string"})
		}
		for _, q := range op.Query {
			name, typ, _ := strings.Cut(q, ":")
			params = append(params, map[string]any{"name": name, "in": "query", "type": typ})
		}
		responses := map[string]any{}
		for _, code := range op.Codes {
			r := map[string]any{"description": http.StatusText(code)}
			if code >= 400 {
				r["schema"] = map[string]string{"$ref": "#/definitions/ErrorBody"}
			}
			responses[strconv.Itoa(code)] = r
		}
		entry := map[string]any{"tags": []string{op.Tag}, "summary": op.Summary, "responses": responses}
		if params != nil {
			entry["parameters"] = params
		}
		if op.Secured {
			entry["security"] = []map[string][]string{{"BearerAuth": {}}}
		}
		if op.Form {
			entry["consumes"] = []string{"application/json", "multipart/form-data"}
		}
		p := swaggerPath(op.Path)
		if paths[p] == nil {
			paths[p] = map[string]any{}
		}
		paths[p][strings.ToLower(op.Method)] = entry
	}
	b, err := json.Marshal(paths)
	if err != nil {
		panic(err)
	}
	return `    "paths": ` + string(b) + "\n}"
}

func spec(instance, title, desc string, ops []Operation) *swag.Spec {
	return &swag.Spec{
		Version:          "1.0",
		BasePath:         "/",
		Schemes:          []string{"http"},
		Title:            title,
		Description:      desc,
		InfoInstanceName: instance,
		SwaggerTemplate:  header + render(ops),
		LeftDelim:        "{{",
		RightDelim:       "}}",
	}
}

var (
	ProductSpec = spec(ProductInstance, "decor-ecom product-service", "Categories, sub-categories, products and media uploads.", ProductOperations)
	OrderSpec   = spec(OrderInstance, "decor-ecom order-service", "Carts, checkout, orders and coupons.", OrderOperations)
	UserSpec    = spec(UserInstance, "decor-ecom user-service", "Admin and vendor authentication, vendors and venues.", UserOperations)
)

func init() {
	swag.Register(ProductSpec.InstanceName(), ProductSpec)
	swag.Register(OrderSpec.InstanceName(), OrderSpec)
	swag.Register(UserSpec.InstanceName(), UserSpec)
}

// Diff compares routes with the document registered as instance. missing
// holds routes the document lacks, stale holds documented operations no
// route serves. Wildcard routes (static files, swagger UI) are skipped.
func Diff(instance string, routes gin.RoutesInfo) (missing, stale []string, err error) {
	raw, err := swag.ReadDoc(instance)
	if err != nil {
		return nil, nil, err
	}
	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, nil, err
	}
	documented := map[string]bool{}
	for p, ops := range doc.Paths {
		for method := range ops {
			documented[strings.ToUpper(method)+" "+p] = true
		}
	}
	routed := map[string]bool{}
	for _, r := range routes {
		if strings.Contains(r.Path, "*") || r.Method == http.MethodHead {
			continue
		}
		key := r.Method + " " + swaggerPath(r.Path)
		routed[key] = true
		if !documented[key] {
			missing = append(missing, key)
		}
	}
	for key := range documented {
		if !routed[key] {
			stale = append(stale, key)
		}
	}
	sort.Strings(missing)
	sort.Strings(stale)
	return missing, stale, nil
}
