package rbac

const (
	PermQuestionCreate = "question:create"
	PermQuestionList   = "question:list"
	PermReportView     = "report:view"
	PermDiagnosticTake = "diagnostic:take"
	PermQuizStart      = "quiz:start"
	PermQuizSubmit     = "quiz:submit"
	PermAttemptViewOwn = "attempt:view-own"
	PermMediaView      = "media:view"
)

var AllPermissions = []string{
	PermQuestionCreate,
	PermQuestionList,
	PermReportView,
	PermDiagnosticTake,
	PermQuizStart,
	PermQuizSubmit,
	PermAttemptViewOwn,
	PermMediaView,
}

// Default policy. Roles are fixed at account creation.
var RolePermissions = Policy{
	"student": {
		PermDiagnosticTake,
		PermQuizStart,
		PermQuizSubmit,
		PermAttemptViewOwn,
		PermMediaView,
	},
	"teacher": {
		"question:*",
		PermReportView,
		PermMediaView,
	},
}
