// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package foreachproviders finds the items a batch is run over.
package foreachproviders
