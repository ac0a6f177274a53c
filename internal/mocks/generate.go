package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Sink --dir ../domain/refreshlog --output domain/refreshlog --outpkg refreshlogmock --filename sink_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/refreshlog --output domain/refreshlog --outpkg refreshlogmock --filename repository_mock.go
