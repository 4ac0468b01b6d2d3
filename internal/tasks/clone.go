package tasks

import (
	"github.com/piwi3910/arrange/internal/host"
	"github.com/piwi3910/arrange/internal/item"
)

// cloneN asks model to create n new arrangeables from prototype's geometry,
// converts each with conv, and returns the converted items alongside the
// host ids the model assigned them. It stops early (returning fewer than n)
// if the model refuses a clone or a clone's outline fails to convert.
func cloneN(model host.ArrangeableModel, conv host.Converter, prototype host.Arrangeable, n int) ([]*item.Item, []string) {
	items := make([]*item.Item, 0, n)
	hostIDs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		hostID, ok := model.Add(prototype.ID())
		if !ok {
			break
		}
		a, ok := model.Visit(hostID)
		if !ok {
			continue
		}
		it, err := conv.Convert(a)
		if err != nil {
			logger.Warn("dropping clone with empty outline", "host_id", hostID, "error", err)
			continue
		}
		items = append(items, it)
		hostIDs = append(hostIDs, hostID)
	}
	return items, hostIDs
}
