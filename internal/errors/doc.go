// Package errors provides the structured error type shared by every layer of
// the encounter tracker.
//
// Errors carry a transport-neutral Code, a user-facing Message, an optional
// Cause and free-form Meta. Handlers translate the code with HTTPStatus or
// ToGRPCError; nothing below the handlers knows about either transport.
//
// The encounter engine speaks in four failure kinds:
//
//	errors.NotFound("encounter not found")                      // 404 / NotFound
//	errors.Unauthorized("not the owner of this encounter")      // 403 / PermissionDenied
//	errors.InvalidArgument("Encounter name is required")        // 400 / InvalidArgument
//	errors.InvalidState("Cannot start combat with no participants") // 400 / FailedPrecondition
//
// Storage failures are wrapped with the attempted operation:
//
//	if err != nil {
//	    return nil, errors.Wrapf(err, "Failed to %s", "create encounter")
//	}
//
// Wrap keeps the code of an existing *Error, so a NotFound from a repository
// stays NotFound; foreign errors become Internal (or Canceled/DeadlineExceeded
// for context errors).
//
// Field validation goes through ValidationBuilder:
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRequired("name", input.Name, vb)
//	if err := vb.Build(); err != nil {
//	    return err
//	}
package errors
