// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

// Package services adapts Tillsight components to suture.Service.
//
// Every wrapper returns ctx.Err() on shutdown and implements fmt.Stringer
// so supervisor events carry a readable service name.
package services
