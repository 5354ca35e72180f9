package store

import (
	"context"
	"fmt"
	"log/slog"
)

// seedMedicine mirrors the national seed list shipped with the app.
type seedMedicine struct {
	name        string
	genericName string
	dosageForm  string
	price       float64
	isNlem      bool
	janPrice    float64
	sideEffects string
}

var medicineSeed = []seedMedicine{
	{"Paracetamol 500mg", "Acetaminophen", "Tablet", 15, true, 2.5, `["Nausea","Liver damage (overdose)"]`},
	{"Amoxicillin 250mg", "Amoxicillin", "Capsule", 35, true, 5, `["Diarrhea","Rash","Allergic reaction"]`},
	{"Metformin 500mg", "Metformin HCl", "Tablet", 25, true, 3, `["Nausea","Stomach upset","Lactic acidosis (rare)"]`},
	{"Amlodipine 5mg", "Amlodipine Besylate", "Tablet", 30, true, 2, `["Swelling","Dizziness","Flushing"]`},
	{"Atenolol 50mg", "Atenolol", "Tablet", 20, true, 2.5, `["Fatigue","Cold hands","Dizziness"]`},
	{"Omeprazole 20mg", "Omeprazole", "Capsule", 40, true, 4, `["Headache","Nausea","Stomach pain"]`},
	{"Azithromycin 500mg", "Azithromycin", "Tablet", 70, true, 12, `["Diarrhea","Nausea","Stomach pain"]`},
	{"Cetirizine 10mg", "Cetirizine HCl", "Tablet", 10, true, 1.5, `["Drowsiness","Dry mouth"]`},
	{"Ibuprofen 400mg", "Ibuprofen", "Tablet", 12, true, 2, `["Stomach upset","Headache","Dizziness"]`},
	{"ORS Powder", "Oral Rehydration Salts", "Powder", 20, true, 5, `["Vomiting (if taken too fast)"]`},
	{"Iron + Folic Acid", "Ferrous Sulphate + Folic Acid", "Tablet", 15, true, 1, `["Constipation","Dark stools","Nausea"]`},
	{"Albendazole 400mg", "Albendazole", "Tablet", 10, true, 2, `["Stomach pain","Nausea","Headache"]`},
	{"Ciprofloxacin 500mg", "Ciprofloxacin", "Tablet", 45, true, 6, `["Nausea","Diarrhea","Dizziness"]`},
	{"Ranitidine 150mg", "Ranitidine HCl", "Tablet", 15, true, 2, `["Headache","Constipation"]`},
	{"Salbutamol Inhaler", "Salbutamol", "Inhaler", 120, true, 30, `["Tremor","Headache","Fast heartbeat"]`},
	{"Doxycycline 100mg", "Doxycycline", "Capsule", 35, true, 5, `["Sun sensitivity","Nausea","Esophageal irritation"]`},
	{"Losartan 50mg", "Losartan Potassium", "Tablet", 35, true, 4, `["Dizziness","Fatigue","High potassium"]`},
	{"Aspirin 75mg", "Acetylsalicylic Acid", "Tablet", 8, true, 1, `["Stomach bleeding","Bruising"]`},
	{"Chloroquine 250mg", "Chloroquine Phosphate", "Tablet", 12, true, 2, `["Nausea","Headache","Vision changes"]`},
	{"Vitamin D3 60000 IU", "Cholecalciferol", "Capsule", 30, false, 8, `["Nausea (high dose)","Hypercalcemia (overdose)"]`},
}

// SeedMedicines inserts the reference medicine list on first run.
//
// A no-op when the medicines table already has rows - after that, the
// table is refreshed only by sync pulls, never by user action. Seeded rows
// are marked synced so they are never pushed as local changes.
func (s *Store) SeedMedicines(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM medicines").Scan(&count); err != nil {
		return fmt.Errorf("seed medicines: count: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed medicines: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := unixMillis(s.now())
	for _, m := range medicineSeed {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO medicines
			(id, name, generic_name, dosage_form, price, is_nlem, jan_aushadhi_price, side_effects, is_synced, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
		`,
			s.ids.NewID(), m.name, m.genericName, m.dosageForm, m.price,
			boolInt(m.isNlem), m.janPrice, m.sideEffects, now,
		)
		if err != nil {
			return fmt.Errorf("seed medicines: insert %q: %w", m.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed medicines: commit: %w", err)
	}

	slog.Info("seeded medicines", "count", len(medicineSeed))
	return nil
}
