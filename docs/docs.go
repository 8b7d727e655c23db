// Package docs holds the OpenAPI document served under /api/swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs
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
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/posts": {
            "get": {
                "tags": ["posts"],
                "summary": "List the feed",
                "parameters": [
                    {"type": "string", "description": "ALL or FOLLOWING", "name": "tab", "in": "query"},
                    {"type": "integer", "description": "Page size (1-50)", "name": "limit", "in": "query"},
                    {"type": "string", "description": "Cursor from a previous page", "name": "cursor", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PostPage"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["posts"],
                "summary": "Create a post",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePostRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Post"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/posts/{id}": {
            "get": {
                "tags": ["posts"],
                "summary": "Get a post with its comments",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PostDetail"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/posts/{id}/comment": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["comments"],
                "summary": "Comment on a post",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "comment", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.AddCommentInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Comment"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/comments/{id}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["comments"],
                "summary": "Comment on a post",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "comment", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.AddCommentInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Comment"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/posts/{id}/like": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["posts"],
                "summary": "Clap for a post",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"likeCount": {"type": "integer"}}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/posts/{id}/bookmark": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["bookmarks"],
                "summary": "Bookmark or unbookmark a post",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"isBookmarked": {"type": "boolean"}}}}
                }
            }
        },
        "/bookmarks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["bookmarks"],
                "summary": "List bookmarked posts, most recently bookmarked first",
                "parameters": [
                    {"type": "integer", "description": "Page size (1-50)", "name": "limit", "in": "query"},
                    {"type": "string", "description": "Cursor from a previous page", "name": "cursor", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/PostPage"}}}
            }
        },
        "/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Current user's private profile",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Update the current user's profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users/{username}": {
            "get": {
                "tags": ["users"],
                "summary": "Public profile with follower, following and post counts",
                "parameters": [{"type": "string", "name": "username", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PublicProfile"}}}
            }
        },
        "/users/{id}/follow": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["follows"],
                "summary": "Follow or unfollow a user",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "properties": {"isFollowing": {"type": "boolean"}}}}}
            }
        },
        "/follows": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["follows"],
                "summary": "List followers and following",
                "parameters": [
                    {"type": "string", "description": "User ID, default the caller", "name": "userId", "in": "query"},
                    {"type": "string", "description": "followers or following", "name": "type", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {
                        "followers": {"type": "array", "items": {"$ref": "#/definitions/models.FollowEntry"}},
                        "following": {"type": "array", "items": {"$ref": "#/definitions/models.FollowEntry"}}
                    }}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/notifications": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["notifications"],
                "summary": "List the caller's notifications, newest first",
                "parameters": [
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "string", "name": "cursor", "in": "query"},
                    {"type": "boolean", "name": "unreadOnly", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/notifications/mark-all-read": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["notifications"],
                "summary": "Mark every notification read",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "properties": {"updated": {"type": "integer"}}}}}
            }
        },
        "/notifications/{id}/read": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["notifications"],
                "summary": "Mark one notification read",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"id": {"type": "string"}, "isRead": {"type": "boolean"}}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/features": {
            "get": {
                "tags": ["features"],
                "summary": "Feature flags",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "properties": {
                    "raw": {"type": "object", "additionalProperties": {"type": "string"}},
                    "evaluated": {"type": "object", "additionalProperties": {"type": "boolean"}}
                }}}}
            }
        },
        "/search": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["search"],
                "summary": "Search posts, users and hashtags",
                "parameters": [
                    {"type": "string", "name": "q", "in": "query", "required": true},
                    {"type": "string", "description": "posts, users or tags", "name": "type", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "string", "name": "cursor", "in": "query"},
                    {"type": "string", "name": "postsCursor", "in": "query"},
                    {"type": "string", "name": "usersCursor", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}
            }
        },
        "/uploads": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "tags": ["uploads"],
                "summary": "Upload 1-4 images",
                "parameters": [
                    {"type": "file", "name": "images", "in": "formData", "required": true},
                    {"type": "string", "name": "folder", "in": "query"}
                ],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}
            }
        },
        "/uploads/{publicId}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["uploads"],
                "summary": "Delete an uploaded image",
                "parameters": [{"type": "string", "description": "Public ID returned by the upload", "name": "publicId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"deleted": {"type": "boolean"}}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.ErrorResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "extra": {"type": "object"}}
        },
        "models.UserSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "name": {"type": "string"},
                "avatarUrl": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "models.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "username": {"type": "string"},
                "name": {"type": "string"},
                "bio": {"type": "string"},
                "avatarUrl": {"type": "string"},
                "coverUrl": {"type": "string"},
                "location": {"type": "string"},
                "website": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "models.PublicProfile": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "name": {"type": "string"},
                "counts": {
                    "type": "object",
                    "properties": {"followers": {"type": "integer"}, "following": {"type": "integer"}, "posts": {"type": "integer"}}
                }
            }
        },
        "models.Post": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "author": {"$ref": "#/definitions/models.UserSummary"},
                "content": {"type": "string"},
                "imageUrls": {"type": "array", "items": {"type": "string"}},
                "likeCount": {"type": "integer"},
                "privacy": {"type": "string", "enum": ["PUBLIC", "FOLLOWERS"]},
                "createdAt": {"type": "string"}
            }
        },
        "models.Comment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "postId": {"type": "string"},
                "author": {"$ref": "#/definitions/models.UserSummary"},
                "content": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "models.PostDetail": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "author": {"$ref": "#/definitions/models.UserSummary"},
                "content": {"type": "string"},
                "imageUrls": {"type": "array", "items": {"type": "string"}},
                "likeCount": {"type": "integer"},
                "privacy": {"type": "string", "enum": ["PUBLIC", "FOLLOWERS"]},
                "createdAt": {"type": "string"},
                "comments": {"type": "array", "items": {"$ref": "#/definitions/models.Comment"}}
            }
        },
        "models.FollowEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "name": {"type": "string"},
                "avatarUrl": {"type": "string"},
                "followedAt": {"type": "string"}
            }
        },
        "service.AddCommentInput": {
            "type": "object",
            "required": ["content"],
            "properties": {"content": {"type": "string", "maxLength": 1000}}
        },
        "PostPage": {
            "type": "object",
            "properties": {
                "posts": {"type": "array", "items": {"$ref": "#/definitions/models.Post"}},
                "nextCursor": {"type": "string"}
            }
        },
        "CreatePostRequest": {
            "type": "object",
            "properties": {
                "content": {"type": "string", "maxLength": 5000},
                "imageUrls": {"type": "array", "maxItems": 4, "items": {"type": "string"}},
                "privacy": {"type": "string", "enum": ["PUBLIC", "FOLLOWERS"]}
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
	Title:            "SocialHub API",
	Description:      "Feed, bookmarks, follows, claps, comments, notifications and search.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
