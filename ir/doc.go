// Package ir is a thin sea-of-nodes IR substrate: nodes, blocks, entities
// and the handful of graph services (user-edge inversion, scoped scratch
// fields, visited generations) the function-call optimizer and the
// register-pressure scheduler need to run against. It carries no parser,
// lexer or code generator; a real IR builder is an external collaborator
// per this module's scope, and NewBuilder/New* here exist only to give
// tests and the demo command a way to assemble small graphs directly.
package ir
