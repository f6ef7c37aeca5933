package workflow

import "baustelle-backend/models"

// TargetKey groups every round for the same billable entity. A whole-project
// invoice keys on the project id alone; a milestone appends its billing id.
func TargetKey(projectID, billingID string) string {
	if billingID == "" {
		return projectID
	}
	return projectID + "::billing:" + billingID
}

// TargetTypeOf reports the target kind for a billing id.
func TargetTypeOf(billingID string) string {
	if billingID == "" {
		return models.TargetTypeProject
	}
	return models.TargetTypeBilling
}
