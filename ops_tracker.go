package fastdfs

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/fastdfs-go/fastdfs/wire"
)

// QueryStorage asks a tracker for a Storage endpoint to upload into. An
// empty group lets the tracker pick any group with capacity — spec.md
// §4.4 Upload's first step, and SPEC_FULL.md §C.3's with/without-group
// variant choice.
func (c *Client) QueryStorage(ctx context.Context, group string) (wire.StorageInfo, error) {
	res, err := c.trackerExchange(ctx, func() (wire.Request, error) {
		if group == "" {
			return wire.NewRequest(wire.TrackerQueryStoreWithoutGroup, wire.EncodeQueryStoreWithoutGroup()), nil
		}
		body, err := wire.EncodeQueryStoreWithGroup(group)
		if err != nil {
			return wire.Request{}, err
		}
		return wire.NewRequest(wire.TrackerQueryStoreWithGroup, body), nil
	})
	if err != nil {
		return wire.StorageInfo{}, err
	}
	return wire.DecodeQueryStoreResp(res.Body)
}

// QueryFetch asks a tracker which Storage holds group/fileID, ahead of a
// Download — spec.md §4.4.
func (c *Client) QueryFetch(ctx context.Context, group, fileID string) (wire.StorageInfo, error) {
	res, err := c.trackerExchange(ctx, func() (wire.Request, error) {
		body, err := wire.EncodeQueryFetchOne(group, fileID)
		if err != nil {
			return wire.Request{}, err
		}
		return wire.NewRequest(wire.TrackerQueryFetchOne, body), nil
	})
	if err != nil {
		return wire.StorageInfo{}, err
	}
	return wire.DecodeQueryFetchResp(res.Body)
}

// queryUpdate asks a tracker which Storage to direct a mutating operation
// at (append/modify/truncate/delete/set-meta) — spec.md §4.4.
func (c *Client) queryUpdate(ctx context.Context, group, fileID string) (wire.StorageInfo, error) {
	res, err := c.trackerExchange(ctx, func() (wire.Request, error) {
		body, err := wire.EncodeQueryUpdate(group, fileID)
		if err != nil {
			return wire.Request{}, err
		}
		return wire.NewRequest(wire.TrackerQueryUpdate, body), nil
	})
	if err != nil {
		return wire.StorageInfo{}, err
	}
	return wire.DecodeQueryFetchResp(res.Body)
}

// ListGroups reports per-group capacity stats, tracker-only.
func (c *Client) ListGroups(ctx context.Context) ([]wire.GroupStat, error) {
	res, err := c.trackerExchange(ctx, func() (wire.Request, error) {
		return wire.NewRequest(wire.TrackerListGroups, nil), nil
	})
	if err != nil {
		return nil, err
	}
	return wire.DecodeListGroupsResp(res.Body)
}

// ListStorages reports per-storage status within group (or every group
// when group is empty), tracker-only.
func (c *Client) ListStorages(ctx context.Context, group string) ([]wire.StorageStat, error) {
	res, err := c.trackerExchange(ctx, func() (wire.Request, error) {
		body, err := wire.EncodeListStorages(group)
		if err != nil {
			return wire.Request{}, err
		}
		return wire.NewRequest(wire.TrackerListStorages, body), nil
	})
	if err != nil {
		return nil, err
	}
	return wire.DecodeListStoragesResp(res.Body)
}

// ListStoragesForGroups fans ListStorages out across every named group
// concurrently, one tracker exchange per group — useful for a cluster-wide
// status view without serializing on round-trip latency. Grounded on the
// teacher's errgroup.WithContext fan-out shape (fs/walkbck.go,
// dsort/dsort.go): the first group's failure cancels the others' in-flight
// exchanges rather than waiting them all out.
func (c *Client) ListStoragesForGroups(ctx context.Context, groups []string) (map[string][]wire.StorageStat, error) {
	g, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	out := make(map[string][]wire.StorageStat, len(groups))
	for _, group := range groups {
		group := group
		g.Go(func() error {
			stats, err := c.ListStorages(ctx, group)
			if err != nil {
				return err
			}
			mu.Lock()
			out[group] = stats
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
