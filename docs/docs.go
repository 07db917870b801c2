// Package docs Swagger 文档，与 handler 上的注解一致；修改接口后可用 swag init 重新生成
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
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["系统"],
                "summary": "健康检查",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/notifications": {
            "get": {
                "produces": ["application/json"],
                "tags": ["通知"],
                "summary": "通知列表",
                "parameters": [
                    {"type": "integer", "description": "每页条数，默认 20", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "偏移量", "name": "offset", "in": "query"},
                    {"type": "string", "description": "分类", "name": "category", "in": "query"},
                    {"type": "string", "description": "类型", "name": "type", "in": "query"},
                    {"type": "string", "description": "优先级", "name": "priority", "in": "query"},
                    {"type": "boolean", "description": "是否包含已读，默认 true", "name": "includeRead", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["通知"],
                "summary": "发布通知",
                "parameters": [
                    {
                        "description": "目标与内容，或目标与模板",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.createRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/notifications/mark-all-read": {
            "patch": {
                "tags": ["通知"],
                "summary": "全部已读",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/notifications/unread-count": {
            "get": {
                "produces": ["application/json"],
                "tags": ["通知"],
                "summary": "未读数量",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/notifications/{id}": {
            "delete": {
                "tags": ["通知"],
                "summary": "删除通知",
                "parameters": [
                    {"type": "string", "description": "通知 ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/notifications/{id}/read": {
            "patch": {
                "tags": ["通知"],
                "summary": "标记已读",
                "parameters": [
                    {"type": "string", "description": "通知 ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/realtime/connections": {
            "get": {
                "produces": ["application/json"],
                "tags": ["实时"],
                "summary": "连接列表",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/realtime/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["实时"],
                "summary": "在线统计",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/realtime/system-messages": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["实时"],
                "summary": "系统消息",
                "parameters": [
                    {
                        "description": "消息",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.systemMessageRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        }
    },
    "definitions": {
        "handler.createRequest": {
            "type": "object",
            "properties": {
                "actionUrl": {"type": "string"},
                "category": {"type": "string"},
                "expiresAt": {"type": "string"},
                "message": {"type": "string"},
                "metadata": {"type": "object", "additionalProperties": true},
                "priority": {"type": "string"},
                "target": {"$ref": "#/definitions/handler.targetRequest"},
                "template": {"type": "string"},
                "title": {"type": "string"},
                "type": {"type": "string"},
                "vars": {"type": "object", "additionalProperties": true}
            }
        },
        "handler.systemMessageRequest": {
            "type": "object",
            "required": ["message"],
            "properties": {
                "message": {"type": "string", "maxLength": 1000},
                "type": {"type": "string", "enum": ["info", "success", "warning", "error"]}
            }
        },
        "handler.targetRequest": {
            "type": "object",
            "required": ["kind"],
            "properties": {
                "kind": {"type": "string", "enum": ["user", "tenant", "roles"]},
                "roles": {"type": "array", "items": {"type": "string"}},
                "userId": {"type": "string"}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "detail": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {},
                "message": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo 导出的文档元信息，可在运行时修改 Host 等字段
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5001",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "TimePulse Notification API",
	Description:      "多租户实时通知服务 API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
