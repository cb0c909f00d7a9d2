// Package docs описание HTTP API для /swagger
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/register/": {
            "post": {
                "tags": ["members"],
                "summary": "Регистрация пользователя",
                "consumes": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterInput"}}],
                "responses": {"201": {"description": "Пользователь создан, выданы токены"}, "400": {"description": "Ошибки по полям"}}
            }
        },
        "/login/": {
            "post": {
                "tags": ["members"],
                "summary": "Вход по email и паролю, токены в cookie",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginInput"}}],
                "responses": {"200": {"description": "Успешный вход"}, "400": {"description": "Нет email или пароля"}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/token/refresh/": {
            "post": {
                "tags": ["members"],
                "summary": "Новая пара токенов по refresh",
                "responses": {"200": {"description": "access и refresh"}, "401": {"description": "Токен невалиден"}}
            }
        },
        "/logout/": {
            "post": {"tags": ["members"], "security": [{"Bearer": []}], "summary": "Сброс cookie", "responses": {"200": {"description": "OK"}}}
        },
        "/profile/": {
            "get": {
                "tags": ["members"], "security": [{"Bearer": []}],
                "summary": "Профиль текущего пользователя",
                "responses": {"200": {"description": "Профиль"}, "404": {"description": "Профиль не найден"}}
            }
        },
        "/profile/update/": {
            "put": {
                "tags": ["members"], "security": [{"Bearer": []}],
                "summary": "Изменение bio и картинки профиля",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"in": "formData", "name": "bio", "type": "string"},
                    {"in": "formData", "name": "profile_picture", "type": "file"},
                    {"in": "query", "name": "user", "type": "string", "description": "ID пользователя, только для staff"}
                ],
                "responses": {"200": {"description": "Профиль"}, "400": {"description": "Ошибки по полям"}, "403": {"description": "Нет прав"}}
            }
        },
        "/shopify-products/": {
            "get": {
                "tags": ["products"], "security": [{"Bearer": []}],
                "summary": "Активные карточки, новые первыми",
                "parameters": [
                    {"in": "query", "name": "label", "type": "string", "enum": ["shopify", "amazon"]},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "page_size", "type": "integer"}
                ],
                "responses": {"200": {"description": "Список карточек, всего в X-Total-Count", "schema": {"type": "array", "items": {"$ref": "#/definitions/Product"}}}}
            }
        },
        "/shopify-products/create/": {
            "post": {
                "tags": ["products"], "security": [{"Bearer": []}],
                "summary": "Карточка Shopify с плоским CSV файлом",
                "consumes": ["multipart/form-data"],
                "parameters": [{"in": "formData", "name": "product_image", "type": "file", "required": true}],
                "responses": {"201": {"description": "Карточка создана"}, "400": {"description": "Ошибка загрузки или шаблон недоступен"}}
            }
        },
        "/shopify-products/{id}/": {
            "get": {
                "tags": ["products"], "security": [{"Bearer": []}],
                "summary": "Активная карточка",
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "Карточка", "schema": {"$ref": "#/definitions/Product"}}, "404": {"description": "Shopify product not found"}}
            }
        },
        "/shopify-products/{id}/delete/": {
            "delete": {
                "tags": ["products"], "security": [{"Bearer": []}],
                "summary": "Мягкое удаление карточки",
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "Удалена"}, "404": {"description": "Shopify product not found"}}
            }
        },
        "/amazon-products/": {
            "get": {
                "tags": ["products"], "security": [{"Bearer": []}],
                "summary": "Активные карточки Amazon",
                "responses": {"200": {"description": "Список карточек", "schema": {"type": "array", "items": {"$ref": "#/definitions/Product"}}}}
            }
        },
        "/amazon-products/create/": {
            "post": {
                "tags": ["products"], "security": [{"Bearer": []}],
                "summary": "Карточка Amazon с таблицей вариантов в CSV и XLSX",
                "consumes": ["multipart/form-data"],
                "parameters": [{"in": "formData", "name": "product_image", "type": "file", "required": true}],
                "responses": {"201": {"description": "Карточка создана"}, "400": {"description": "Ошибка загрузки"}}
            }
        },
        "/amazon-products/{id}/delete/": {
            "delete": {
                "tags": ["products"], "security": [{"Bearer": []}],
                "summary": "Мягкое удаление карточки",
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "Удалена"}, "404": {"description": "Shopify product not found"}}
            }
        }
    },
    "definitions": {
        "RegisterInput": {
            "type": "object",
            "required": ["email", "first_name", "last_name", "password", "confirm_password"],
            "properties": {
                "email": {"type": "string", "maxLength": 254},
                "first_name": {"type": "string", "maxLength": 30},
                "last_name": {"type": "string", "maxLength": 30},
                "password": {"type": "string", "minLength": 8},
                "confirm_password": {"type": "string"}
            }
        },
        "LoginInput": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "Product": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "product_name": {"type": "string"},
                "sku": {"type": "string", "format": "uuid"},
                "label": {"type": "string", "enum": ["shopify", "amazon"]},
                "is_active": {"type": "boolean"},
                "product_image": {"type": "string"},
                "csv_file": {"type": "string", "x-nullable": true},
                "excel_file": {"type": "string", "x-nullable": true},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        }
    }
}`

// SwaggerInfo параметры документа; версия и хост подставляются при старте
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Catalog Service API",
	Description:      "Карточки товаров с выгрузками для Shopify и Amazon",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
