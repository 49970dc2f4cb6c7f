package presign

import (
	"context"
	"fmt"
	"time"

	"github.com/lfsgate/lfsgate/internal/auth"
	"github.com/lfsgate/lfsgate/internal/lfs"

	"golang.org/x/sync/errgroup"
)

// Expiry is the validity of every signed URL.
const Expiry = lfs.ExpiresIn * time.Second

// Requests builds one signing request per object of batch, in batch order.
func Requests(cred auth.Credential, target lfs.Target, batch *lfs.BatchRequest) []Request {
	method := batch.Operation.Method()
	reqs := make([]Request, len(batch.Objects))
	for i, obj := range batch.Objects {
		reqs[i] = Request{
			Method:          method,
			Bucket:          target.Bucket,
			Region:          lfs.Region,
			Key:             obj.OID,
			AccessKeyID:     cred.AccessKeyID,
			SecretAccessKey: cred.SecretAccessKey,
			Endpoint:        target.Endpoint,
			ExpiresIn:       Expiry,
		}
	}
	return reqs
}

// SignAll signs every request with at most limit calls in flight (no bound
// when limit <= 0). hrefs[i] always belongs to reqs[i], whatever order the
// calls complete in. The first failure cancels the rest and is returned;
// there are no partial results. A panic in signer is returned as an error.
func SignAll(ctx context.Context, signer Signer, limit int, reqs []Request) ([]string, error) {
	hrefs := make([]string, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		g.Go(func() (err error) {
			// A panicking signer fails the batch instead of the process.
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("signing object %d (%s): panic: %v", i, req.Key, p)
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			href, err := signer.Sign(gctx, req)
			if err != nil {
				return fmt.Errorf("signing object %d (%s): %w", i, req.Key, err)
			}
			hrefs[i] = href
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return hrefs, nil
}

// SignBatch signs every object of batch and returns the actions in batch order.
func SignBatch(ctx context.Context, signer Signer, limit int, cred auth.Credential, target lfs.Target, batch *lfs.BatchRequest) ([]lfs.Action, error) {
	hrefs, err := SignAll(ctx, signer, limit, Requests(cred, target, batch))
	if err != nil {
		return nil, err
	}
	actions := make([]lfs.Action, len(hrefs))
	for i, href := range hrefs {
		actions[i] = lfs.Action{Href: href, ExpiresIn: lfs.ExpiresIn}
	}
	return actions, nil
}
