package validation

// Request schema names.
const (
	SchemaRegister       = "register"
	SchemaLogin          = "login"
	SchemaApproveUser    = "approve-user"
	SchemaSetUserRole    = "set-user-role"
	SchemaUpdateProfile  = "update-profile"
	SchemaCreateProject  = "create-project"
	SchemaUpdateProject  = "update-project"
	SchemaAddMember      = "add-member"
	SchemaUpdateMember   = "update-member"
	SchemaCreateReport   = "create-report"
	SchemaUpdateReport   = "update-report"
	SchemaCreateTask     = "create-task"
	SchemaUpdateTask     = "update-task"
	SchemaAttachMedia    = "attach-media"
	SchemaComment        = "comment"
	SchemaCreateDocument = "create-document"
	SchemaUpdateDocument = "update-document"
	SchemaAddFundBalance = "add-fund-balance"
	SchemaRequestFund    = "request-fund"
	SchemaVerifyFund     = "verify-fund"
	SchemaCreateItem     = "create-logistic-item"
	SchemaUpdateItem     = "update-logistic-item"
	SchemaCreateMovement = "create-logistic-transaction"
	SchemaSignUpload     = "sign-upload"
)

const taskProperties = `{
	"taskName": {"type": "string", "minLength": 1},
	"workerCount": {"type": "integer", "minimum": 0},
	"progress": {"type": "number", "minimum": 0, "maximum": 100},
	"notes": {"type": ["string", "null"]}
}`

var requestSchemas = map[string]string{
	SchemaRegister: `{
		"type": "object",
		"required": ["name", "email", "password"],
		"properties": {
			"name": {"type": "string", "minLength": 1, "maxLength": 120},
			"email": {"type": "string", "pattern": "^[^@\\s]+@[^@\\s]+$"},
			"password": {"type": "string", "minLength": 8}
		}
	}`,
	SchemaLogin: `{
		"type": "object",
		"required": ["email", "password"],
		"properties": {
			"email": {"type": "string", "minLength": 1},
			"password": {"type": "string", "minLength": 1}
		}
	}`,
	SchemaApproveUser: `{
		"type": "object",
		"required": ["role"],
		"properties": {
			"role": {"enum": ["ADMIN", "CEO", "USER"]}
		}
	}`,
	SchemaSetUserRole: `{
		"type": "object",
		"required": ["role"],
		"properties": {
			"role": {"enum": ["ADMIN", "CEO", "USER", "NONE"]}
		}
	}`,
	SchemaUpdateProfile: `{
		"type": "object",
		"minProperties": 1,
		"additionalProperties": false,
		"properties": {
			"name": {"type": "string", "minLength": 1, "maxLength": 120},
			"image": {"type": ["string", "null"]}
		}
	}`,
	SchemaCreateProject: `{
		"type": "object",
		"required": ["name", "slug", "startDate"],
		"properties": {
			"name": {"type": "string", "minLength": 1},
			"slug": {"type": "string", "pattern": "^[a-z0-9]+(?:-[a-z0-9]+)*$"},
			"description": {"type": ["string", "null"]},
			"location": {"type": ["string", "null"]},
			"startDate": {"type": "string", "minLength": 10},
			"endDate": {"type": ["string", "null"]},
			"status": {"enum": ["ACTIVE", "DONE", "PAUSED"]}
		}
	}`,
	SchemaUpdateProject: `{
		"type": "object",
		"minProperties": 1,
		"properties": {
			"name": {"type": "string", "minLength": 1},
			"description": {"type": ["string", "null"]},
			"location": {"type": ["string", "null"]},
			"startDate": {"type": "string", "minLength": 10},
			"endDate": {"type": ["string", "null"]},
			"status": {"enum": ["ACTIVE", "DONE", "PAUSED"]}
		}
	}`,
	SchemaAddMember: `{
		"type": "object",
		"required": ["userId", "role"],
		"properties": {
			"userId": {"type": "string", "minLength": 1},
			"role": {"enum": ["MANDOR", "ARCHITECT", "FINANCE"]}
		}
	}`,
	SchemaUpdateMember: `{
		"type": "object",
		"required": ["role"],
		"properties": {
			"role": {"enum": ["MANDOR", "ARCHITECT", "FINANCE"]}
		}
	}`,
	SchemaCreateReport: `{
		"type": "object",
		"required": ["reportDate", "taskDescription"],
		"properties": {
			"reportDate": {"type": "string", "minLength": 10},
			"taskDescription": {"type": "string", "minLength": 1},
			"progressPercent": {"type": "number", "minimum": 0, "maximum": 100},
			"weather": {"type": ["string", "null"]},
			"totalWorkers": {"type": "integer", "minimum": 0},
			"location": {"type": ["string", "null"]},
			"issues": {"type": ["string", "null"]},
			"tasks": {
				"type": "array",
				"items": {"type": "object", "required": ["taskName"], "properties": ` + taskProperties + `}
			}
		}
	}`,
	SchemaUpdateReport: `{
		"type": "object",
		"minProperties": 1,
		"properties": {
			"reportDate": {"type": "string", "minLength": 10},
			"taskDescription": {"type": "string", "minLength": 1},
			"progressPercent": {"type": "number", "minimum": 0, "maximum": 100},
			"weather": {"type": ["string", "null"]},
			"totalWorkers": {"type": "integer", "minimum": 0},
			"location": {"type": ["string", "null"]},
			"issues": {"type": ["string", "null"]}
		}
	}`,
	SchemaCreateTask: `{
		"type": "object",
		"required": ["taskName"],
		"properties": ` + taskProperties + `
	}`,
	SchemaUpdateTask: `{
		"type": "object",
		"minProperties": 1,
		"properties": ` + taskProperties + `
	}`,
	SchemaAttachMedia: `{
		"type": "object",
		"required": ["publicId", "url"],
		"properties": {
			"publicId": {"type": "string", "minLength": 1},
			"url": {"type": "string", "minLength": 1}
		}
	}`,
	SchemaComment: `{
		"type": "object",
		"required": ["content"],
		"properties": {
			"content": {"type": "string", "minLength": 1, "maxLength": 2000}
		}
	}`,
	SchemaCreateDocument: `{
		"type": "object",
		"required": ["fileName", "fileType", "publicId", "url"],
		"properties": {
			"fileName": {"type": "string", "minLength": 1},
			"fileType": {"enum": ["DESIGN", "DRAWING", "REFERENCE", "SPECIFICATION", "OTHER"]},
			"publicId": {"type": "string", "minLength": 1},
			"url": {"type": "string", "minLength": 1},
			"fileSize": {"type": "integer", "minimum": 0},
			"mimeType": {"type": "string"},
			"title": {"type": ["string", "null"]},
			"description": {"type": ["string", "null"]}
		}
	}`,
	SchemaUpdateDocument: `{
		"type": "object",
		"minProperties": 1,
		"properties": {
			"fileName": {"type": "string", "minLength": 1},
			"fileType": {"enum": ["DESIGN", "DRAWING", "REFERENCE", "SPECIFICATION", "OTHER"]},
			"publicId": {"type": "string", "minLength": 1},
			"url": {"type": "string", "minLength": 1},
			"fileSize": {"type": "integer", "minimum": 0},
			"mimeType": {"type": "string"},
			"title": {"type": ["string", "null"]},
			"description": {"type": ["string", "null"]}
		}
	}`,
	SchemaAddFundBalance: `{
		"type": "object",
		"required": ["amount", "description"],
		"properties": {
			"amount": {"type": "number", "exclusiveMinimum": 0},
			"description": {"type": "string", "minLength": 1}
		}
	}`,
	SchemaRequestFund: `{
		"type": "object",
		"required": ["amount", "description"],
		"properties": {
			"amount": {"type": "number", "exclusiveMinimum": 0},
			"description": {"type": "string", "minLength": 1},
			"proofPublicId": {"type": ["string", "null"]}
		}
	}`,
	SchemaVerifyFund: `{
		"type": "object",
		"required": ["status"],
		"properties": {
			"status": {"enum": ["APPROVED", "REJECTED"]}
		}
	}`,
	SchemaCreateItem: `{
		"type": "object",
		"required": ["name", "unit"],
		"properties": {
			"name": {"type": "string", "minLength": 1},
			"unit": {"type": "string", "minLength": 1}
		}
	}`,
	SchemaUpdateItem: `{
		"type": "object",
		"minProperties": 1,
		"properties": {
			"name": {"type": "string", "minLength": 1},
			"unit": {"type": "string", "minLength": 1}
		}
	}`,
	SchemaCreateMovement: `{
		"type": "object",
		"required": ["itemId", "type", "quantity"],
		"properties": {
			"itemId": {"type": "string", "minLength": 1},
			"type": {"enum": ["IN", "OUT"]},
			"quantity": {"type": "number", "exclusiveMinimum": 0},
			"notes": {"type": ["string", "null"]}
		}
	}`,
	SchemaSignUpload: `{
		"type": "object",
		"required": ["projectSlug", "type"],
		"properties": {
			"projectSlug": {"type": "string", "minLength": 1},
			"type": {"enum": ["reports", "documents", "emergency"]},
			"fileName": {"type": "string"},
			"contentType": {"type": "string"}
		}
	}`,
}
