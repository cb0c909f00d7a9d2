package interfaces

import "errors"

// ErrCacheMiss возвращается CachePort.Get, если ключ отсутствует
var ErrCacheMiss = errors.New("cache miss")

// ErrObjectNotFound возвращается ObjectStoragePort, если объекта нет в бакете
var ErrObjectNotFound = errors.New("object not found")
