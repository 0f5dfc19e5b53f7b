package domain

// row builds a raw record with the five required columns.
func row(feeder, interruption, restoration string, customers any, fault any) RawRecord {
	return RawRecord{
		ColFeederName:       feeder,
		ColInterruptionTime: interruption,
		ColRestorationTime:  restoration,
		ColCustomerNo:       customers,
		ColFaultCategory:    fault,
	}
}

// januaryExample is the two-row period used throughout the tests: one feeder
// spelled two ways, 2h for 100 customers and 1h for 50 customers.
func januaryExample() RawPeriod {
	return RawPeriod{
		Label: "Jan",
		Records: []RawRecord{
			row("Feeder A ", "01/01/2024 00:00", "01/01/2024 02:00", 100, "Overload"),
			row("Feeder A", "02/01/2024 00:00", "02/01/2024 01:00", 50, "Earth Fault"),
		},
	}
}

func mustDataset(periods ...RawPeriod) Dataset {
	tables := make([]PeriodTable, 0, len(periods))
	for _, p := range periods {
		table, _ := IngestPeriod(p)
		tables = append(tables, table)
	}
	ds, err := Merge(tables...)
	if err != nil {
		panic(err)
	}
	return ds
}
