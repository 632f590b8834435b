// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

/*
Package supervisor runs the long-lived services of the server under a
suture v4 supervisor tree.

Every service implements suture.Service:

	Serve(ctx context.Context) error
	String() string

Serve blocks until ctx is canceled. Returning any other error counts as a
failure and the service is restarted after backoff. Returning
suture.ErrDoNotRestart stops it for good.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	_, _ = tree.Add(supervisor.LayerData, engine)
	_, _ = tree.Add(supervisor.LayerMessaging, auditor)
	_, _ = tree.Add(supervisor.LayerAPI, services.NewHTTPServerService(srv, 10*time.Second, logger))

	errCh := tree.ServeBackground(ctx)

Package services holds adapters for components whose lifecycle does not
already match suture.Service.
*/
package supervisor
