package collector

// Info identifies a runner component inside the agent process.
type Info struct {
	Name string
}
