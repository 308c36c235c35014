package query

import "salemre/backend/internal/models"

// PropertySchema describes GET /api/properties.
var PropertySchema = &Schema{
	Entity: "properties",
	Fields: []Field{
		{Kind: CompoundOr, Type: String, Param: "search", Columns: []string{"title", "description", "location"}},
		{Kind: Exact, Type: Enum, Param: "type", Column: "type", Values: models.PropertyTypes},
		{Kind: Contains, Type: String, Param: "location", Column: "location"},
		{Kind: Exact, Type: Enum, Param: "status", Column: "status", Values: models.PropertyStatuses, AllowAll: true},
		{Kind: Range, Type: Float, MinParam: "minPrice", MaxParam: "maxPrice", Column: "price"},
		{Kind: Range, Type: Float, MinParam: "minSize", MaxParam: "maxSize", Column: "size"},
		{Kind: Exact, Type: Int, Param: "bedrooms", Column: "bedrooms"},
		{Kind: Exact, Type: Int, Param: "bathrooms", Column: "bathrooms"},
		{Kind: Exact, Type: Bool, Param: "featured", Column: "featured"},
		{Kind: Exact, Type: Int, Param: "owner", Column: "owner_id"},
	},
	SortKeys: map[string]string{
		"createdAt": "created_at",
		"price":     "price",
		"size":      "size",
		"title":     "title",
		"views":     "views",
		"bedrooms":  "bedrooms",
	},
	IDColumn:    "id",
	DefaultSort: Sort{Key: "createdAt", Desc: true},
	Audience:    &AudienceRule{Param: "status", Column: "status", PublicValue: string(models.PropertyStatusActive)},
}

// BlogSchema describes GET /api/blog.
var BlogSchema = &Schema{
	Entity: "blog",
	Fields: []Field{
		{Kind: CompoundOr, Type: String, Param: "search", Columns: []string{"title", "excerpt", "content"}},
		{Kind: Exact, Type: Enum, Param: "category", Column: "category", Values: models.BlogCategories},
		{Kind: SetMembership, Type: String, Param: "tag", Column: "tags"},
		{Kind: Exact, Type: Enum, Param: "status", Column: "status", Values: models.BlogStatuses, AllowAll: true},
		{Kind: Exact, Type: Bool, Param: "featured", Column: "featured"},
		{Kind: Exact, Type: Int, Param: "author", Column: "author_id"},
	},
	SortKeys: map[string]string{
		"createdAt":   "created_at",
		"publishedAt": "published_at",
		"title":       "title",
		"views":       "views",
	},
	IDColumn:    "id",
	DefaultSort: Sort{Key: "createdAt", Desc: true},
	Audience:    &AudienceRule{Param: "status", Column: "status", PublicValue: string(models.BlogStatusPublished)},
}

// InquirySchema describes GET /api/inquiries.
var InquirySchema = &Schema{
	Entity: "inquiries",
	Fields: []Field{
		{Kind: CompoundOr, Type: String, Param: "search", Columns: []string{"name", "email", "message"}},
		{Kind: Exact, Type: Enum, Param: "status", Column: "status", Values: models.InquiryStatuses, AllowAll: true},
		{Kind: Exact, Type: Int, Param: "property", Column: "property_id"},
		{Kind: Range, Type: Time, MinParam: "from", MaxParam: "to", Column: "created_at"},
	},
	SortKeys: map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"name":      "name",
		"status":    "status",
	},
	IDColumn:    "id",
	DefaultSort: Sort{Key: "createdAt", Desc: true},
}

// UserSchema describes GET /api/users.
var UserSchema = &Schema{
	Entity: "users",
	Fields: []Field{
		{Kind: CompoundOr, Type: String, Param: "search", Columns: []string{"name", "email"}},
		{Kind: Exact, Type: Enum, Param: "role", Column: "role", Values: models.UserRoles, AllowAll: true},
		{Kind: Exact, Type: Enum, Param: "status", Column: "status", Values: models.UserStatuses, AllowAll: true},
	},
	SortKeys: map[string]string{
		"createdAt": "created_at",
		"name":      "name",
		"email":     "email",
		"role":      "role",
	},
	IDColumn:    "id",
	DefaultSort: Sort{Key: "createdAt", Desc: true},
}

// Schemas indexes every schema by entity name.
var Schemas = map[string]*Schema{
	PropertySchema.Entity: PropertySchema,
	BlogSchema.Entity:     BlogSchema,
	InquirySchema.Entity:  InquirySchema,
	UserSchema.Entity:     UserSchema,
}
