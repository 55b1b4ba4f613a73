// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

// Package neighborhood derives k-nearest-neighbor user neighborhoods from a
// trained similarity model.
//
// A similarity model indexes users by a dense internal numbering, so every
// lookup goes raw id -> internal id -> k nearest internal ids -> raw ids.
// The neighbor order reported by the model (nearest first) is preserved.
//
// # Usage
//
//	nbhds, err := neighborhood.Build(userIDs, model, neighborhood.DefaultSize)
//	if errors.Is(err, neighborhood.ErrUnknownUser) {
//	    // the model never saw one of the users
//	}
//
//	for _, uid := range nbhds.Users() {
//	    group := nbhds.Group(uid) // uid plus its neighbors
//	    _ = group
//	}
//
// Maps are immutable once built and safe for concurrent readers.
package neighborhood
