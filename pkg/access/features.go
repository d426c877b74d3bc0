package access

// Feature names one discrete authorization gate checked by calling code.
// The set is closed and append-only; keys are grouped by product module
// ("jo" is job orders, "pib"/"peb" are customs import/export declarations).
type Feature string

// Predicate decides one feature for one profile. Predicates must be pure
// and must never consult department scope; scope is handled exclusively by
// the resolution step so that every predicate stays reusable under
// role substitution.
type Predicate func(p *Profile) bool

// Anyone grants the feature to every authenticated profile.
func Anyone() Predicate {
	return func(p *Profile) bool {
		return p != nil
	}
}

// RoleIn grants the feature when the profile's role is in the given set.
func RoleIn(roles ...Role) Predicate {
	return func(p *Profile) bool {
		if p == nil {
			return false
		}
		for _, r := range roles {
			if p.Role == r {
				return true
			}
		}
		return false
	}
}

// HasFlag grants the feature when the named capability flag is set on the
// profile's bundle.
func HasFlag(flag Flag) Predicate {
	return func(p *Profile) bool {
		return p != nil && p.Permissions.Has(flag)
	}
}

// AnyOf grants the feature when at least one predicate grants it.
func AnyOf(preds ...Predicate) Predicate {
	return func(p *Profile) bool {
		for _, pred := range preds {
			if pred(p) {
				return true
			}
		}
		return false
	}
}

// AllOf grants the feature only when every predicate grants it.
func AllOf(preds ...Predicate) Predicate {
	return func(p *Profile) bool {
		for _, pred := range preds {
			if !pred(p) {
				return false
			}
		}
		return true
	}
}

// featureRules is the declarative feature-to-predicate table. One entry per
// gate; unknown keys resolve to a deny in the engine, so retiring a key is
// always safe for stale clients.
func featureRules() map[Feature]Predicate {
	management := RoleIn(RoleOwner, RoleDirector)
	elevated := RoleIn(RoleOwner, RoleDirector, RoleSysadmin)

	return map[Feature]Predicate{
		// Dashboard
		"dashboard.view":              Anyone(),
		"dashboard.customize":         Anyone(),
		"dashboard.view_revenue":      HasFlag(FlagSeeRevenue),
		"dashboard.view_profit":       HasFlag(FlagSeeProfit),
		"dashboard.view_outstanding":  AnyOf(HasFlag(FlagSeeRevenue), HasFlag(FlagManageInvoices)),
		"dashboard.view_job_stats":    RoleIn(RoleOwner, RoleDirector, RoleManager, RoleMarketing, RoleOps, RoleEngineer, RoleAdministration),
		"dashboard.view_fleet_status": RoleIn(RoleOwner, RoleDirector, RoleManager, RoleOps, RoleEngineer),
		"dashboard.view_hse_stats":    RoleIn(RoleOwner, RoleDirector, RoleManager, RoleHSE),

		// Quotations
		"quotation.view":          RoleIn(RoleOwner, RoleDirector, RoleManager, RoleMarketing, RoleAdministration, RoleFinance),
		"quotation.create":        RoleIn(RoleOwner, RoleDirector, RoleMarketing),
		"quotation.edit":          RoleIn(RoleOwner, RoleDirector, RoleMarketing),
		"quotation.delete":        management,
		"quotation.approve":       management,
		"quotation.send":          RoleIn(RoleOwner, RoleDirector, RoleMarketing),
		"quotation.convert_to_jo": AllOf(RoleIn(RoleOwner, RoleDirector, RoleMarketing), HasFlag(FlagCreateJobOrder)),
		"quotation.view_margin":   HasFlag(FlagSeeProfit),
		"quotation.export":        RoleIn(RoleOwner, RoleDirector, RoleManager, RoleMarketing, RoleFinance),

		// Job orders
		"jo.view":            RoleIn(RoleOwner, RoleDirector, RoleManager, RoleMarketing, RoleOps, RoleEngineer, RoleAdministration, RoleFinance),
		"jo.view_all":        RoleIn(RoleOwner, RoleDirector, RoleManager),
		"jo.create_primary":  HasFlag(FlagCreateJobOrder),
		"jo.create_purchase": AllOf(HasFlag(FlagCreateJobOrder), RoleIn(RoleOwner, RoleDirector, RoleManager, RoleOps, RoleAdministration)),
		"jo.edit":            HasFlag(FlagCreateJobOrder),
		"jo.delete":          elevated,
		"jo.approve":         HasFlag(FlagApproveJobOrder),
		"jo.assign_team":     RoleIn(RoleOwner, RoleDirector, RoleManager, RoleOps),
		"jo.fill_costs":      HasFlag(FlagFillCosts),
		"jo.estimate_costs":  HasFlag(FlagEstimateCosts),
		"jo.view_costs":      AnyOf(HasFlag(FlagFillCosts), HasFlag(FlagEstimateCosts), HasFlag(FlagSeeProfit)),
		"jo.view_revenue":    HasFlag(FlagSeeRevenue),
		"jo.close":           RoleIn(RoleOwner, RoleDirector, RoleManager),
		"jo.reopen":          management,
		"jo.print_worksheet": RoleIn(RoleOwner, RoleDirector, RoleManager, RoleOps, RoleEngineer, RoleAdministration),
		"jo.export":          RoleIn(RoleOwner, RoleDirector, RoleManager, RoleFinance, RoleAdministration),

		// Customs import declarations (PIB)
		"pib.view":             RoleIn(RoleOwner, RoleDirector, RoleManager, RoleAdministration, RoleFinance),
		"pib.create":           RoleIn(RoleOwner, RoleDirector, RoleAdministration),
		"pib.edit":             RoleIn(RoleOwner, RoleDirector, RoleAdministration),
		"pib.delete":           elevated,
		"pib.submit":           RoleIn(RoleOwner, RoleDirector, RoleAdministration),
		"pib.track_status":     RoleIn(RoleOwner, RoleDirector, RoleManager, RoleAdministration, RoleMarketing),
		"pib.upload_documents": RoleIn(RoleOwner, RoleDirector, RoleAdministration, RoleOps),
		"pib.view_duties":      AnyOf(RoleIn(RoleAdministration), HasFlag(FlagSeeRevenue)),
		"pib.assign_broker":    RoleIn(RoleOwner, RoleDirector, RoleAdministration),
		"pib.export":           RoleIn(RoleOwner, RoleDirector, RoleAdministration, RoleFinance),

		// Customs export declarations (PEB)
		"peb.view":             RoleIn(RoleOwner, RoleDirector, RoleManager, RoleAdministration, RoleFinance),
		"peb.create":           RoleIn(RoleOwner, RoleDirector, RoleAdministration),
		"peb.edit":             RoleIn(RoleOwner, RoleDirector, RoleAdministration),
		"peb.delete":           elevated,
		"peb.submit":           RoleIn(RoleOwner, RoleDirector, RoleAdministration),
		"peb.track_status":     RoleIn(RoleOwner, RoleDirector, RoleManager, RoleAdministration, RoleMarketing),
		"peb.upload_documents": RoleIn(RoleOwner, RoleDirector, RoleAdministration, RoleOps),
		"peb.export":           RoleIn(RoleOwner, RoleDirector, RoleAdministration, RoleFinance),

		// Invoicing
		"invoice.view":             AnyOf(HasFlag(FlagManageInvoices), HasFlag(FlagSeeRevenue)),
		"invoice.create":           HasFlag(FlagManageInvoices),
		"invoice.edit":             HasFlag(FlagManageInvoices),
		"invoice.delete":           management,
		"invoice.void":             management,
		"invoice.approve":          management,
		"invoice.approve_vendor":   AllOf(HasFlag(FlagManageInvoices), RoleIn(RoleOwner, RoleDirector, RoleFinance)),
		"invoice.send":             HasFlag(FlagManageInvoices),
		"invoice.mark_paid":        HasFlag(FlagManageInvoices),
		"invoice.view_outstanding": AnyOf(HasFlag(FlagManageInvoices), HasFlag(FlagSeeRevenue)),
		"invoice.view_tax":         RoleIn(RoleOwner, RoleDirector, RoleFinance),
		"invoice.export":           RoleIn(RoleOwner, RoleDirector, RoleFinance),

		// Payroll
		"payroll.view":              RoleIn(RoleOwner, RoleDirector, RoleHR),
		"payroll.manage":            RoleIn(RoleOwner, RoleDirector, RoleHR),
		"payroll.approve":           management,
		"payroll.manage_components": RoleIn(RoleOwner, RoleDirector, RoleHR),
		"payroll.view_own_slip":     Anyone(),
		"payroll.export":            RoleIn(RoleOwner, RoleDirector, RoleHR, RoleFinance),

		// HR
		"hr.view_employees":      RoleIn(RoleOwner, RoleDirector, RoleManager, RoleHR),
		"hr.manage_employees":    RoleIn(RoleOwner, RoleDirector, RoleHR),
		"hr.view_contracts":      RoleIn(RoleOwner, RoleDirector, RoleHR),
		"hr.manage_contracts":    RoleIn(RoleOwner, RoleDirector, RoleHR),
		"hr.approve_leave":       RoleIn(RoleOwner, RoleDirector, RoleManager, RoleHR),
		"hr.request_leave":       Anyone(),
		"hr.view_attendance":     RoleIn(RoleOwner, RoleDirector, RoleManager, RoleHR),
		"hr.manage_attendance":   RoleIn(RoleOwner, RoleDirector, RoleHR),
		"hr.view_performance":    RoleIn(RoleOwner, RoleDirector, RoleManager, RoleHR),
		"hr.manage_performance":  RoleIn(RoleOwner, RoleDirector, RoleHR),
		"hr.view_recruitment":    RoleIn(RoleOwner, RoleDirector, RoleHR),
		"hr.manage_recruitment":  RoleIn(RoleOwner, RoleDirector, RoleHR),

		// HSE
		"hse.view_incidents":      RoleIn(RoleOwner, RoleDirector, RoleManager, RoleHSE, RoleOps),
		"hse.report_incident":     Anyone(),
		"hse.manage_incidents":    RoleIn(RoleOwner, RoleDirector, RoleHSE),
		"hse.view_inspections":    RoleIn(RoleOwner, RoleDirector, RoleManager, RoleHSE),
		"hse.manage_inspections":  RoleIn(RoleOwner, RoleDirector, RoleHSE),
		"hse.schedule_inspection": RoleIn(RoleOwner, RoleDirector, RoleHSE),
		"hse.view_training":       Anyone(),
		"hse.manage_training":     RoleIn(RoleOwner, RoleDirector, RoleHSE, RoleHR),
		"hse.view_permits":        RoleIn(RoleOwner, RoleDirector, RoleManager, RoleHSE, RoleOps),
		"hse.manage_permits":      RoleIn(RoleOwner, RoleDirector, RoleHSE),

		// Maintenance
		"maintenance.view_schedule":      RoleIn(RoleOwner, RoleDirector, RoleManager, RoleOps, RoleEngineer),
		"maintenance.create_work_order":  RoleIn(RoleOwner, RoleDirector, RoleManager, RoleOps, RoleEngineer),
		"maintenance.edit_work_order":    RoleIn(RoleOwner, RoleDirector, RoleOps, RoleEngineer),
		"maintenance.close_work_order":   RoleIn(RoleOwner, RoleDirector, RoleManager, RoleEngineer),
		"maintenance.approve_work_order": HasFlag(FlagApproveJobOrder),
		"maintenance.view_history":       RoleIn(RoleOwner, RoleDirector, RoleManager, RoleOps, RoleEngineer),
		"maintenance.log_downtime":       RoleIn(RoleOps, RoleEngineer),
		"maintenance.export":             RoleIn(RoleOwner, RoleDirector, RoleManager, RoleEngineer),

		// Assets
		"assets.view":             RoleIn(RoleOwner, RoleDirector, RoleManager, RoleOps, RoleEngineer, RoleFinance),
		"assets.register":         RoleIn(RoleOwner, RoleDirector, RoleOps),
		"assets.edit":             RoleIn(RoleOwner, RoleDirector, RoleOps),
		"assets.dispose":          management,
		"assets.assign":           RoleIn(RoleOwner, RoleDirector, RoleManager, RoleOps),
		"assets.view_utilization": RoleIn(RoleOwner, RoleDirector, RoleManager, RoleOps),
		"assets.view_value":       AnyOf(RoleIn(RoleFinance), HasFlag(FlagSeeProfit)),
		"assets.export":           RoleIn(RoleOwner, RoleDirector, RoleFinance),

		// Customers
		"customer.view":            RoleIn(RoleOwner, RoleDirector, RoleManager, RoleMarketing, RoleAdministration, RoleFinance),
		"customer.create":          RoleIn(RoleOwner, RoleDirector, RoleMarketing),
		"customer.edit":            RoleIn(RoleOwner, RoleDirector, RoleMarketing),
		"customer.delete":          management,
		"customer.view_contacts":   RoleIn(RoleOwner, RoleDirector, RoleManager, RoleMarketing, RoleAdministration, RoleFinance),
		"customer.manage_contacts": RoleIn(RoleOwner, RoleDirector, RoleMarketing, RoleAdministration),
		"customer.export":          RoleIn(RoleOwner, RoleDirector, RoleMarketing),

		// Vendors
		"vendor.view":    RoleIn(RoleOwner, RoleDirector, RoleManager, RoleOps, RoleAdministration, RoleFinance),
		"vendor.create":  RoleIn(RoleOwner, RoleDirector, RoleOps, RoleAdministration),
		"vendor.edit":    RoleIn(RoleOwner, RoleDirector, RoleOps, RoleAdministration),
		"vendor.delete":  management,
		"vendor.approve": RoleIn(RoleOwner, RoleDirector, RoleFinance),
		"vendor.export":  RoleIn(RoleOwner, RoleDirector, RoleFinance),

		// User administration
		"users.view":           HasFlag(FlagManageUsers),
		"users.create":         HasFlag(FlagManageUsers),
		"users.edit":           HasFlag(FlagManageUsers),
		"users.delete":         AllOf(HasFlag(FlagManageUsers), elevated),
		"users.assign_roles":   AllOf(HasFlag(FlagManageUsers), elevated),
		"users.reset_password": HasFlag(FlagManageUsers),
		"users.view_activity":  HasFlag(FlagManageUsers),
		"users.export":         HasFlag(FlagManageUsers),

		// Reports
		"reports.revenue":     HasFlag(FlagSeeRevenue),
		"reports.profit":      HasFlag(FlagSeeProfit),
		"reports.outstanding": AnyOf(HasFlag(FlagSeeRevenue), HasFlag(FlagManageInvoices)),
		"reports.operations":  RoleIn(RoleOwner, RoleDirector, RoleManager, RoleOps),
		"reports.hr":          RoleIn(RoleOwner, RoleDirector, RoleHR),
		"reports.hse":         RoleIn(RoleOwner, RoleDirector, RoleManager, RoleHSE),
		"reports.customs":     RoleIn(RoleOwner, RoleDirector, RoleAdministration),
		"reports.fleet":       RoleIn(RoleOwner, RoleDirector, RoleManager, RoleOps),
		"reports.export":      RoleIn(RoleOwner, RoleDirector, RoleManager, RoleFinance),

		// Company settings
		"settings.view":              elevated,
		"settings.edit_company":      management,
		"settings.edit_departments":  elevated,
		"settings.edit_numbering":    elevated,
		"settings.edit_tax":          RoleIn(RoleOwner, RoleDirector, RoleFinance),
		"settings.edit_integrations": RoleIn(RoleOwner, RoleSysadmin),

		// AI assistant
		"ai.query":            Anyone(),
		"ai.query_financials": HasFlag(FlagSeeProfit),
		"ai.query_operations": RoleIn(RoleOwner, RoleDirector, RoleManager, RoleOps),
		"ai.configure":        RoleIn(RoleOwner, RoleSysadmin),

		// Announcements
		"announcement.view":   Anyone(),
		"announcement.create": RoleIn(RoleOwner, RoleDirector, RoleHR),
		"announcement.delete": management,

		// Document library
		"doclib.view":   Anyone(),
		"doclib.manage": RoleIn(RoleOwner, RoleDirector, RoleAdministration, RoleSysadmin),
	}
}
