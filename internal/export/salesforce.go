package export

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/pkg/salesforce"
)

// PushLeads inserts persons as Salesforce Leads and returns the number of
// records accepted. Per-record rejections are logged, not fatal.
func PushLeads(ctx context.Context, c salesforce.Client, persons []model.Person) (int, error) {
	results, err := salesforce.BulkInsertLeads(ctx, c, persons)
	if err != nil {
		return 0, err
	}

	accepted := 0
	for i, r := range results {
		if r.Success {
			accepted++
			continue
		}
		zap.L().Warn("salesforce rejected lead",
			zap.Int("index", i),
			zap.Strings("errors", r.Errors))
	}
	return accepted, nil
}
