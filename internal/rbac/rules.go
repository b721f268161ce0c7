package rbac

// Default policy. Students act on their own attempts only; grading and
// authoring stay with staff.
var RolePermissions = map[string][]string{
	"student": {
		"assignment:view",
		"attempt:start",
		"attempt:save",
		"attempt:submit",
		"attempt:view-own",
		"upload:answer",
	},
	"teacher": {
		"assignment:view",
		"assignment:create",
		"assignment:publish",
		"attempt:view-all",
		"attempt:grade",
		"attempt:regrade",
	},
	"admin": {
		"*", // everything
	},
}
