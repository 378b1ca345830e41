package quota

import (
	"testing"

	"github.com/Gaganb-30/cloud-store/pkg/model"
)

func TestLedger_applyRoleLimits_Free(t *testing.T) {
	l := &Ledger{defaults: Defaults{
		FreeMaxStorage:  10 << 30,
		FreeMaxFileSize: 1 << 30,
		FreeMaxFiles:    1000,
	}}

	q := &model.Quota{}
	l.applyRoleLimits(q, model.RoleFree, nil)

	if q.MaxStorage != 10<<30 {
		t.Errorf("MaxStorage = %d, want %d", q.MaxStorage, 10<<30)
	}
	if q.MaxFileSize != 1<<30 {
		t.Errorf("MaxFileSize = %d, want %d", q.MaxFileSize, 1<<30)
	}
}

func TestLedger_applyRoleLimits_Premium(t *testing.T) {
	l := &Ledger{defaults: Defaults{
		PremiumMaxStorage: model.Unlimited,
		PremiumMaxFiles:   model.Unlimited,
	}}

	q := &model.Quota{}
	l.applyRoleLimits(q, model.RolePremium, nil)

	if q.MaxStorage != model.Unlimited {
		t.Errorf("MaxStorage = %d, want unlimited", q.MaxStorage)
	}
	if q.MaxFileSize != model.Unlimited {
		t.Errorf("MaxFileSize = %d, want unlimited", q.MaxFileSize)
	}
}

func TestLedger_applyRoleLimits_OverrideWins(t *testing.T) {
	l := &Ledger{defaults: Defaults{FreeMaxStorage: 10 << 30}}
	override := int64(5 << 30)

	q := &model.Quota{}
	l.applyRoleLimits(q, model.RoleFree, &override)

	if q.MaxStorage != 5<<30 {
		t.Errorf("MaxStorage = %d, want override %d", q.MaxStorage, 5<<30)
	}
}
