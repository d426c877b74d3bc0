package access

// Bundle is the fixed-shape record of capability flags attached to every
// profile. Bundles are data, not behavior: how a flag gates a feature is
// decided by the feature rule table, never here.
type Bundle struct {
	CanSeeRevenue      bool `json:"can_see_revenue"`
	CanSeeProfit       bool `json:"can_see_profit"`
	CanApproveJobOrder bool `json:"can_approve_job_order"`
	CanManageInvoices  bool `json:"can_manage_invoices"`
	CanManageUsers     bool `json:"can_manage_users"`
	CanCreateJobOrder  bool `json:"can_create_job_order"`
	CanFillCosts       bool `json:"can_fill_costs"`
	CanEstimateCosts   bool `json:"can_estimate_costs"`
}

// Flag names a single capability inside a Bundle.
type Flag string

const (
	FlagSeeRevenue      Flag = "can_see_revenue"
	FlagSeeProfit       Flag = "can_see_profit"
	FlagApproveJobOrder Flag = "can_approve_job_order"
	FlagManageInvoices  Flag = "can_manage_invoices"
	FlagManageUsers     Flag = "can_manage_users"
	FlagCreateJobOrder  Flag = "can_create_job_order"
	FlagFillCosts       Flag = "can_fill_costs"
	FlagEstimateCosts   Flag = "can_estimate_costs"
)

// AllFlags returns every capability flag a Bundle carries.
func AllFlags() []Flag {
	return []Flag{
		FlagSeeRevenue,
		FlagSeeProfit,
		FlagApproveJobOrder,
		FlagManageInvoices,
		FlagManageUsers,
		FlagCreateJobOrder,
		FlagFillCosts,
		FlagEstimateCosts,
	}
}

// Has reports the value of a single flag. Unknown flags read as false.
func (b Bundle) Has(flag Flag) bool {
	switch flag {
	case FlagSeeRevenue:
		return b.CanSeeRevenue
	case FlagSeeProfit:
		return b.CanSeeProfit
	case FlagApproveJobOrder:
		return b.CanApproveJobOrder
	case FlagManageInvoices:
		return b.CanManageInvoices
	case FlagManageUsers:
		return b.CanManageUsers
	case FlagCreateJobOrder:
		return b.CanCreateJobOrder
	case FlagFillCosts:
		return b.CanFillCosts
	case FlagEstimateCosts:
		return b.CanEstimateCosts
	}
	return false
}

// defaultBundles is the canonical role-to-bundle table. Every role in the
// catalog must have an entry; the totality test enforces this.
func defaultBundles() map[Role]Bundle {
	return map[Role]Bundle{
		RoleOwner: {
			CanSeeRevenue:      true,
			CanSeeProfit:       true,
			CanApproveJobOrder: true,
			CanManageInvoices:  true,
			CanManageUsers:     true,
			CanCreateJobOrder:  true,
			CanFillCosts:       true,
			CanEstimateCosts:   true,
		},
		RoleDirector: {
			CanSeeRevenue:      true,
			CanSeeProfit:       true,
			CanApproveJobOrder: true,
			CanManageInvoices:  true,
			CanManageUsers:     true,
			CanCreateJobOrder:  true,
			CanFillCosts:       true,
			CanEstimateCosts:   true,
		},
		RoleManager: {
			CanSeeRevenue:      true,
			CanSeeProfit:       true,
			CanApproveJobOrder: true,
			CanManageInvoices:  false,
			CanManageUsers:     false,
			CanCreateJobOrder:  true,
			CanFillCosts:       false,
			CanEstimateCosts:   true,
		},
		RoleSysadmin: {
			CanSeeRevenue:      false,
			CanSeeProfit:       false,
			CanApproveJobOrder: false,
			CanManageInvoices:  false,
			CanManageUsers:     true,
			CanCreateJobOrder:  false,
			CanFillCosts:       false,
			CanEstimateCosts:   false,
		},
		RoleAdministration: {
			CanSeeRevenue:      false,
			CanSeeProfit:       false,
			CanApproveJobOrder: false,
			CanManageInvoices:  false,
			CanManageUsers:     false,
			CanCreateJobOrder:  true,
			CanFillCosts:       true,
			CanEstimateCosts:   false,
		},
		RoleFinance: {
			CanSeeRevenue:      true,
			CanSeeProfit:       true,
			CanApproveJobOrder: false,
			CanManageInvoices:  true,
			CanManageUsers:     false,
			CanCreateJobOrder:  false,
			CanFillCosts:       false,
			CanEstimateCosts:   false,
		},
		RoleMarketing: {
			CanSeeRevenue:      true,
			CanSeeProfit:       false,
			CanApproveJobOrder: false,
			CanManageInvoices:  false,
			CanManageUsers:     false,
			CanCreateJobOrder:  true,
			CanFillCosts:       false,
			CanEstimateCosts:   true,
		},
		RoleOps: {
			CanSeeRevenue:      false,
			CanSeeProfit:       false,
			CanApproveJobOrder: false,
			CanManageInvoices:  false,
			CanManageUsers:     false,
			CanCreateJobOrder:  true,
			CanFillCosts:       true,
			CanEstimateCosts:   true,
		},
		RoleEngineer: {
			CanSeeRevenue:      false,
			CanSeeProfit:       false,
			CanApproveJobOrder: false,
			CanManageInvoices:  false,
			CanManageUsers:     false,
			CanCreateJobOrder:  false,
			CanFillCosts:       true,
			CanEstimateCosts:   true,
		},
		RoleHR: {
			CanSeeRevenue:      false,
			CanSeeProfit:       false,
			CanApproveJobOrder: false,
			CanManageInvoices:  false,
			CanManageUsers:     false,
			CanCreateJobOrder:  false,
			CanFillCosts:       false,
			CanEstimateCosts:   false,
		},
		RoleHSE: {
			CanSeeRevenue:      false,
			CanSeeProfit:       false,
			CanApproveJobOrder: false,
			CanManageInvoices:  false,
			CanManageUsers:     false,
			CanCreateJobOrder:  false,
			CanFillCosts:       false,
			CanEstimateCosts:   false,
		},
	}
}
