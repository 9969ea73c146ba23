// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package otdag instruments dagbench runs with OpenTelemetry tracing and
// metrics and with structured logging via zap. Backend decorators wrap each
// generation call. Observers report unit-level progress from the scheduler.
// Spans and instruments come from the global otel providers, so install real
// providers before a run to export anything.
package otdag
