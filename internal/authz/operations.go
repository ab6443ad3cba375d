package authz

import "github.com/terraconstructs/sandaran/internal/auth"

var (
	anyMember  = []auth.ProjectRole{auth.ProjectRoleMandor, auth.ProjectRoleArchitect, auth.ProjectRoleFinance}
	fieldCrew  = []auth.ProjectRole{auth.ProjectRoleMandor, auth.ProjectRoleArchitect}
	architects = []auth.ProjectRole{auth.ProjectRoleArchitect}
	finance    = []auth.ProjectRole{auth.ProjectRoleFinance}
	mandors    = []auth.ProjectRole{auth.ProjectRoleMandor}
)

func adminQuery(name string) Operation {
	return Operation{Name: name, Class: Query, AdminOnly: true}
}

func adminMutation(name string) Operation {
	return Operation{Name: name, Class: Mutation, AdminOnly: true}
}

func projectQuery(name string, roles []auth.ProjectRole) Operation {
	return Operation{Name: name, Class: Query, ProjectScoped: true, AllowedRoles: roles}
}

func projectMutation(name string, roles []auth.ProjectRole) Operation {
	return Operation{Name: name, Class: Mutation, ProjectScoped: true, AllowedRoles: roles}
}

// Users and profile
var (
	OpListUsers        = adminQuery(auth.UserList)
	OpListPendingUsers = adminQuery(auth.UserListPending)
	OpApproveUser      = adminMutation(auth.UserApprove)
	OpDeactivateUser   = adminMutation(auth.UserDeactivate)
	OpSetUserRole      = adminMutation(auth.UserSetRole)
	OpReadProfile      = Operation{Name: auth.ProfileRead, Class: Query}
	OpEditOwnProfile   = Operation{Name: auth.ProfileEditOwn, Class: Mutation, AllowCEO: true}
)

// Projects and memberships
var (
	OpListProjects     = Operation{Name: auth.ProjectList, Class: Query}
	OpCreateProject    = adminMutation(auth.ProjectCreate)
	OpReadProject      = projectQuery(auth.ProjectRead, anyMember)
	OpUpdateProject    = adminMutation(auth.ProjectUpdate)
	OpDeleteProject    = adminMutation(auth.ProjectDelete)
	OpListMembers      = projectQuery(auth.MemberList, anyMember)
	OpAddMember        = adminMutation(auth.MemberAdd)
	OpUpdateMemberRole = adminMutation(auth.MemberUpdateRole)
	OpRemoveMember     = adminMutation(auth.MemberRemove)
)

// Daily reports, tasks, media and comments
var (
	OpCreateReport  = projectMutation(auth.ReportCreate, fieldCrew)
	OpListReports   = projectQuery(auth.ReportList, anyMember)
	OpReadReport    = projectQuery(auth.ReportRead, anyMember)
	OpUpdateReport  = projectMutation(auth.ReportUpdate, fieldCrew)
	OpDeleteReport  = projectMutation(auth.ReportDelete, fieldCrew)
	OpCreateTask    = projectMutation(auth.TaskCreate, fieldCrew)
	OpUpdateTask    = projectMutation(auth.TaskUpdate, fieldCrew)
	OpDeleteTask    = projectMutation(auth.TaskDelete, fieldCrew)
	OpAttachMedia   = projectMutation(auth.MediaAttach, fieldCrew)
	OpDeleteMedia   = projectMutation(auth.MediaDelete, fieldCrew)
	OpListComments  = projectQuery(auth.CommentList, anyMember)
	OpCreateComment = Operation{Name: auth.CommentCreate, Class: Mutation, ProjectScoped: true, AllowedRoles: anyMember, AllowCEO: true}
	OpUpdateComment = Operation{Name: auth.CommentUpdate, Class: Mutation, ProjectScoped: true, AllowedRoles: anyMember, AllowCEO: true}
	OpDeleteComment = Operation{Name: auth.CommentDelete, Class: Mutation, ProjectScoped: true, AllowedRoles: anyMember, AllowCEO: true}
)

// Documents
var (
	OpCreateDocument = projectMutation(auth.DocumentCreate, architects)
	OpListDocuments  = projectQuery(auth.DocumentList, anyMember)
	OpReadDocument   = projectQuery(auth.DocumentRead, anyMember)
	OpUpdateDocument = projectMutation(auth.DocumentUpdate, architects)
	OpDeleteDocument = projectMutation(auth.DocumentDelete, architects)
)

// Emergency fund
var (
	OpReadFund             = projectQuery(auth.FundRead, anyMember)
	OpAddFundBalance       = projectMutation(auth.FundAddBalance, finance)
	OpRequestFund          = projectMutation(auth.FundRequest, mandors)
	OpVerifyFund           = projectMutation(auth.FundVerify, finance)
	OpListFundTransactions = projectQuery(auth.FundListTransactions, anyMember)
)

// Logistics
var (
	OpCreateLogisticItem        = projectMutation(auth.LogisticItemCreate, finance)
	OpListLogisticItems         = projectQuery(auth.LogisticItemList, anyMember)
	OpUpdateLogisticItem        = projectMutation(auth.LogisticItemUpdate, finance)
	OpDeleteLogisticItem        = projectMutation(auth.LogisticItemDelete, finance)
	OpCreateLogisticTransaction = projectMutation(auth.LogisticTransactionCreate, mandors)
	OpListLogisticTransactions  = projectQuery(auth.LogisticTransactionList, anyMember)
	OpReadStock                 = projectQuery(auth.LogisticStockRead, anyMember)
)

// Uploads
var (
	OpSignUpload   = Operation{Name: auth.UploadSign, Class: Mutation}
	OpDeleteUpload = Operation{Name: auth.UploadDelete, Class: Mutation}
)
