// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

// Package logging configures zerolog for FriendRec.
//
// Components receive a zerolog.Logger by value and derive their own child
// with a "component" field. The package also keeps a global logger for
// main and for code without an injected logger.
//
//	if err := logging.Init(logging.Config{Level: "debug", Format: "console"}); err != nil {
//	    return err
//	}
//	engineLog := logging.Component("jobs")
//
// HTTP middleware stores request and job IDs in the request context;
// Ctx turns them into fields:
//
//	logging.Ctx(r.Context()).Info().Msg("result downloaded")
//
// SlogHandler bridges zerolog to log/slog for the suture supervisor's
// sutureslog event hook.
package logging
