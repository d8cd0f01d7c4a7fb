package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.ReorderRuleRepository = (*ruleRepo)(nil)

type ruleRepo struct{ v *view }

func (r *ruleRepo) Upsert(ctx context.Context, rule *entity.ReorderRule) error {
	if err := r.v.check(ctx, true); err != nil {
		return err
	}
	k := ruleKey{rule.TenantID, rule.ProductID, rule.LocationID}
	r.v.saveRule(k)
	cp := *rule
	r.v.st.rules[k] = &cp
	return nil
}

func (r *ruleRepo) Get(ctx context.Context, tenantID, productID, locationID string) (*entity.ReorderRule, error) {
	if err := r.v.check(ctx, false); err != nil {
		return nil, err
	}
	rule, ok := r.v.st.rules[ruleKey{tenantID, productID, locationID}]
	if !ok {
		return nil, nil
	}
	cp := *rule
	return &cp, nil
}

func (r *ruleRepo) List(ctx context.Context, tenantID, locationID string) ([]*entity.ReorderRule, error) {
	if err := r.v.check(ctx, false); err != nil {
		return nil, err
	}
	var out []*entity.ReorderRule
	for k, rule := range r.v.st.rules {
		if k.TenantID != tenantID || (locationID != "" && k.LocationID != locationID) {
			continue
		}
		cp := *rule
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LocationID != out[j].LocationID {
			return out[i].LocationID < out[j].LocationID
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out, nil
}

func (r *ruleRepo) Delete(ctx context.Context, tenantID, productID, locationID string) error {
	if err := r.v.check(ctx, true); err != nil {
		return err
	}
	k := ruleKey{tenantID, productID, locationID}
	r.v.saveRule(k)
	delete(r.v.st.rules, k)
	return nil
}

func (r *ruleRepo) ListTenants(ctx context.Context) ([]string, error) {
	if err := r.v.check(ctx, false); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for k := range r.v.st.rules {
		if !seen[k.TenantID] {
			seen[k.TenantID] = true
			out = append(out, k.TenantID)
		}
	}
	sort.Strings(out)
	return out, nil
}
