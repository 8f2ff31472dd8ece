package permission

import "github.com/examforge/examforge/internal/shared/authorization"

// Resources and actions checked by the HTTP layer.
const (
	ResourcePlan         = "plan"
	ResourcePayment      = "payment"
	ResourceSubscription = "subscription"

	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionReadAll = "read_all"
	ActionManage  = "manage"
)

var defaultPolicies = [][]string{
	{authorization.RoleAdmin.String(), ResourcePlan, ActionCreate},
	{authorization.RoleAdmin.String(), ResourcePlan, ActionUpdate},
	{authorization.RoleAdmin.String(), ResourcePlan, ActionDelete},
	{authorization.RoleAdmin.String(), ResourceSubscription, ActionManage},

	// Managers support users: read-only across accounts.
	{authorization.RoleManager.String(), ResourcePlan, ActionReadAll},
	{authorization.RoleManager.String(), ResourcePayment, ActionReadAll},
	{authorization.RoleManager.String(), ResourceSubscription, ActionReadAll},
}

// admin inherits every manager permission.
var defaultGroupings = [][]string{
	{authorization.RoleAdmin.String(), authorization.RoleManager.String()},
}
