package model

// PageInfo is one row of the memory map dump.
type PageInfo struct {
	Index          int  `json:"index"`
	Used           bool `json:"used"`
	LastAccessTime int  `json:"lastAccessTime"`
}

// ScheduleEntry is one row of the schedule (Gantt) dump.
type ScheduleEntry struct {
	TransactionID int `json:"transactionId"`
	StartTime     int `json:"startTime"`
	EndTime       int `json:"endTime"`
}

// Metrics are the accounting figures derived from completed records.
type Metrics struct {
	AverageWaitingTime float64 `json:"averageWaitingTime"`
	CPUUtilization     float64 `json:"cpuUtilization"`
	CurrentTime        int     `json:"currentTime"`
	Transactions       int     `json:"transactions"`
	Completed          int     `json:"completed"`
}
