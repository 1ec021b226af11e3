// Package docs registers the storefront OpenAPI document with swag so
// gin-swagger can serve it under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Liveness and datastore reachability",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "A datastore is unreachable"}
                }
            }
        },
        "/orders": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["orders"],
                "summary": "List the caller's orders, newest first",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}}}
            },
            "post": {
                "tags": ["orders"],
                "summary": "Place an order from explicit items or the caller's cart",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "order", "required": true, "schema": {"$ref": "#/definitions/placeOrderRequest"}}],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation or conflict", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Product or coupon not found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/orders/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["orders"],
                "summary": "Fetch one of the caller's orders",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/errorResponse"}}}
            }
        },
        "/orders/{id}/cancel": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["orders"],
                "summary": "Cancel the caller's pending or confirmed order",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Not cancellable", "schema": {"$ref": "#/definitions/errorResponse"}}}
            }
        },
        "/orders/admin/all": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["orders"],
                "summary": "Paginated order list for admins",
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/orders/admin/{id}/status": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["orders"],
                "summary": "Overwrite an order's status fields",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "patch", "required": true, "schema": {"$ref": "#/definitions/statusPatch"}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/coupons/validate": {
            "post": {
                "tags": ["coupons"],
                "summary": "Check whether a coupon code is usable now",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/validateCouponRequest"}}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Invalid or expired coupon", "schema": {"$ref": "#/definitions/errorResponse"}}}
            }
        },
        "/products": {
            "get": {
                "tags": ["products"],
                "summary": "List active products",
                "parameters": [
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "boolean", "name": "featured", "in": "query"},
                    {"type": "boolean", "name": "bestseller", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "string", "default": "-createdAt", "name": "sort", "in": "query"},
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 12, "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/products/bulk": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["products"],
                "summary": "Create many products, reporting duplicates per item",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/cart/add": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["cart"],
                "summary": "Add a product to the caller's cart",
                "parameters": [{"in": "body", "name": "line", "required": true, "schema": {"$ref": "#/definitions/cartLineRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Insufficient stock", "schema": {"$ref": "#/definitions/errorResponse"}}}
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Start a registration and mail a verification code",
                "responses": {"201": {"description": "Created"}, "502": {"description": "Mail delivery failed", "schema": {"$ref": "#/definitions/errorResponse"}}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Exchange email and password for a token",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/loginRequest"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}, "403": {"description": "Email not verified"}}
            }
        },
        "/upload/image": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["upload"],
                "summary": "Upload one image to the media store",
                "consumes": ["multipart/form-data"],
                "parameters": [{"type": "file", "name": "image", "in": "formData", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Unsupported or too large"}}
            }
        }
    },
    "definitions": {
        "errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"}
            }
        },
        "orderLine": {
            "type": "object",
            "properties": {
                "productId": {"type": "string"},
                "quantity": {"type": "integer"}
            }
        },
        "shippingAddress": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "street": {"type": "string"},
                "city": {"type": "string"},
                "state": {"type": "string"},
                "zipCode": {"type": "string"},
                "phone": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "placeOrderRequest": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/orderLine"}},
                "shippingAddress": {"$ref": "#/definitions/shippingAddress"},
                "paymentMethod": {"type": "string", "enum": ["cod", "online", "upi"]},
                "couponCode": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "statusPatch": {
            "type": "object",
            "properties": {
                "orderStatus": {"type": "string", "enum": ["pending", "confirmed", "processing", "shipped", "delivered", "cancelled"]},
                "paymentStatus": {"type": "string", "enum": ["pending", "paid", "failed"]}
            }
        },
        "validateCouponRequest": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "subtotal": {"type": "number"}
            }
        },
        "cartLineRequest": {
            "type": "object",
            "required": ["productId"],
            "properties": {
                "productId": {"type": "string"},
                "quantity": {"type": "integer"}
            }
        },
        "loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Pujnam Store API",
	Description:      "Storefront backend: catalog, cart, coupons, checkout, accounts and content.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
