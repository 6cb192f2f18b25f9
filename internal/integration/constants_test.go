package integration_test

const (
	TestHallName      = "Test Hall 1"
	TestOtherHallName = "Test Hall 2"
	TestHallLayout    = `{"A": ["1", "2", "3"], "B": ["1", "2", "3"]}`

	TestMovieTitle    = "Test Movie"
	TestMovieDuration = "2.00"

	TestShowDate = "2024-05-10"
)
