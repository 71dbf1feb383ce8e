package rbac

// Default policy. Admin holds every permission.
var RolePermissions = map[string][]string{
	"student": {
		"exam:view",
		"attempt:create",
		"attempt:view-own",
		"attempt:drag",
		"attempt:submit",
		"attempt:review-own",
	},
	"teacher": {
		"exam:create",
		"exam:view",
		"exam:view-answers",
		"attempt:view-all",
		"attempt:review",
	},
	"admin": {
		"*",
	},
}
