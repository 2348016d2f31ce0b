package handler

var WriteReadError = writeReadError
