package auth

// Action names identify protected operations in logs, traces and metrics.

// User management actions
const (
	UserList        = "user:list"
	UserListPending = "user:list-pending"
	UserApprove     = "user:approve"
	UserDeactivate  = "user:deactivate"
	UserSetRole     = "user:set-role"
	ProfileRead     = "profile:read"
	ProfileEditOwn  = "profile:edit-own"
)

// Project and membership actions
const (
	ProjectList      = "project:list"
	ProjectCreate    = "project:create"
	ProjectRead      = "project:read"
	ProjectUpdate    = "project:update"
	ProjectDelete    = "project:delete"
	MemberList       = "member:list"
	MemberAdd        = "member:add"
	MemberUpdateRole = "member:update-role"
	MemberRemove     = "member:remove"
)

// Daily report actions
const (
	ReportCreate  = "report:create"
	ReportList    = "report:list"
	ReportRead    = "report:read"
	ReportUpdate  = "report:update"
	ReportDelete  = "report:delete"
	TaskCreate    = "report-task:create"
	TaskUpdate    = "report-task:update"
	TaskDelete    = "report-task:delete"
	MediaAttach   = "report-media:attach"
	MediaDelete   = "report-media:delete"
	CommentCreate = "report-comment:create"
	CommentList   = "report-comment:list"
	CommentUpdate = "report-comment:update"
	CommentDelete = "report-comment:delete"
)

// Document actions
const (
	DocumentCreate = "document:create"
	DocumentList   = "document:list"
	DocumentRead   = "document:read"
	DocumentUpdate = "document:update"
	DocumentDelete = "document:delete"
)

// Emergency fund actions
const (
	FundRead             = "emergency-fund:read"
	FundAddBalance       = "emergency-fund:add-balance"
	FundRequest          = "emergency-fund:request"
	FundVerify           = "emergency-fund:verify"
	FundListTransactions = "emergency-fund:list-transactions"
)

// Logistics actions
const (
	LogisticItemCreate        = "logistic-item:create"
	LogisticItemList          = "logistic-item:list"
	LogisticItemUpdate        = "logistic-item:update"
	LogisticItemDelete        = "logistic-item:delete"
	LogisticTransactionCreate = "logistic-transaction:create"
	LogisticTransactionList   = "logistic-transaction:list"
	LogisticStockRead         = "logistic-stock:read"
)

// Upload actions
const (
	UploadSign   = "upload:sign"
	UploadDelete = "upload:delete"
)
