package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"health-metrics/internal/domain"
	"health-metrics/internal/repository"
)

// demoPassword is the shared credential for seeded demo accounts. It is
// stored hashed like any other password.
const demoPassword = "password123"

// SeedDemoData inserts demo technicians, patients, items and results when
// the users table is empty. Seeded technicians have already "changed"
// their password; seeded patients still face the forced first-login
// change.
func SeedDemoData(ctx context.Context, db *sql.DB, users repository.UserRepository, items repository.ItemRepository, results repository.ResultRepository) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	seedUsers := []domain.User{
		{Role: domain.RoleTechnician, Name: "Alice Chang", Account: "tech001", FirstLogin: false},
		{Role: domain.RoleTechnician, Name: "Brian Lee", Account: "tech002", FirstLogin: false},
		{Role: domain.RoleTechnician, Name: "Cathy Wang", Account: "tech003", FirstLogin: false},
		{Role: domain.RolePatient, Name: "David Chen", Account: "patient001", FirstLogin: true},
		{Role: domain.RolePatient, Name: "Emily Lin", Account: "patient002", FirstLogin: true},
		{Role: domain.RolePatient, Name: "Frank Huang", Account: "patient003", FirstLogin: true},
		{Role: domain.RolePatient, Name: "Grace Liu", Account: "patient004", FirstLogin: true},
		{Role: domain.RolePatient, Name: "Henry Chou", Account: "patient005", FirstLogin: true},
	}
	ids := make(map[string]int64, len(seedUsers))
	for i := range seedUsers {
		seedUsers[i].PasswordHash = string(hash)
		id, err := users.Create(ctx, &seedUsers[i])
		if err != nil {
			return fmt.Errorf("seed user %s: %w", seedUsers[i].Account, err)
		}
		ids[seedUsers[i].Account] = id
	}

	seedItems := []domain.TestItem{
		{Name: "Blood Pressure", Description: "Systolic and diastolic pressure measurement"},
		{Name: "Blood Sugar", Description: "Fasting blood glucose measurement"},
		{Name: "Cholesterol", Description: "Total cholesterol, LDL and HDL panel"},
		{Name: "Electrocardiogram", Description: "Cardiac electrical activity recording"},
		{Name: "Body Mass Index", Description: "BMI calculation and assessment"},
	}
	itemIDs := make([]int64, len(seedItems))
	for i := range seedItems {
		id, err := items.Create(ctx, &seedItems[i])
		if err != nil {
			return fmt.Errorf("seed item %s: %w", seedItems[i].Name, err)
		}
		itemIDs[i] = id
	}

	seedResults := []domain.TestResult{
		{PatientID: ids["patient001"], ItemID: itemIDs[0], TechnicianID: ids["tech001"], Score: 8.5, TestDate: "2024-09-20", Notes: "Blood pressure within normal range"},
		{PatientID: ids["patient001"], ItemID: itemIDs[1], TechnicianID: ids["tech001"], Score: 7.0, TestDate: "2024-09-20", Notes: "Slightly elevated, recommend diet control"},
		{PatientID: ids["patient002"], ItemID: itemIDs[0], TechnicianID: ids["tech002"], Score: 9.0, TestDate: "2024-09-21", Notes: "Excellent blood pressure"},
		{PatientID: ids["patient002"], ItemID: itemIDs[2], TechnicianID: ids["tech002"], Score: 6.5, TestDate: "2024-09-21", Notes: "Cholesterol needs attention"},
		{PatientID: ids["patient003"], ItemID: itemIDs[3], TechnicianID: ids["tech003"], Score: 8.0, TestDate: "2024-09-22", Notes: "Normal ECG"},
	}
	for i := range seedResults {
		if _, err := results.Create(ctx, &seedResults[i]); err != nil {
			return fmt.Errorf("seed result %d: %w", i, err)
		}
	}

	return nil
}
