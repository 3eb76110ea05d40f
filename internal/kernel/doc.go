// Package kernel turns HTTP requests into responses.
//
// The Kernel runs every request, main or sub, through the same
// pipeline:
//
//  1. format negotiation
//  2. route filtering and matching
//  3. request attribute population from the matched route
//  4. parameter conversion
//  5. static access check
//  6. request listeners
//  7. controller invocation
//
// Errors raised anywhere in the pipeline are rendered into responses by
// the first applicable ErrorRenderer. Sub-requests are dispatched with
// Handle(ctx, req, SubRequest) and reuse the caller's context, so they
// share deadlines and trace spans with the main request.
package kernel
