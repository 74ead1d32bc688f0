package catalog

// seedCars is the demo inventory inserted on first run.
var seedCars = []Car{
	{Make: "Toyota", Model: "Corolla", Year: 2022, Price: 21500, Mileage: 24000, Style: "sedan", FuelType: "petrol", Description: "Reliable compact sedan with low running costs and a strong resale record."},
	{Make: "Toyota", Model: "RAV4", Year: 2023, Price: 32900, Mileage: 12000, Style: "suv", FuelType: "hybrid", Description: "Hybrid compact SUV, spacious boot, all-wheel drive."},
	{Make: "Honda", Model: "Civic", Year: 2021, Price: 23800, Mileage: 31000, Style: "sedan", FuelType: "petrol", Description: "Sporty handling with excellent fuel economy and a well-finished cabin."},
	{Make: "Honda", Model: "CR-V", Year: 2022, Price: 29500, Mileage: 27000, Style: "suv", FuelType: "petrol", Description: "Family SUV with generous rear legroom and a smooth CVT."},
	{Make: "Ford", Model: "Mustang", Year: 2020, Price: 38900, Mileage: 18500, Style: "coupe", FuelType: "petrol", Description: "5.0L V8 GT, performance exhaust, one owner."},
	{Make: "Ford", Model: "F-150", Year: 2021, Price: 42700, Mileage: 36000, Style: "truck", FuelType: "petrol", Description: "Crew cab workhorse with towing package."},
	{Make: "Tesla", Model: "Model 3", Year: 2023, Price: 39990, Mileage: 8000, Style: "sedan", FuelType: "electric", Description: "Long range battery, autopilot, minimal wear."},
	{Make: "Tesla", Model: "Model Y", Year: 2022, Price: 44900, Mileage: 21000, Style: "suv", FuelType: "electric", Description: "Electric crossover with seven-seat option and supercharging."},
	{Make: "BMW", Model: "330i", Year: 2021, Price: 36500, Mileage: 29000, Style: "sedan", FuelType: "petrol", Description: "M Sport package, heads-up display, full service history."},
	{Make: "BMW", Model: "X5", Year: 2020, Price: 49800, Mileage: 41000, Style: "suv", FuelType: "diesel", Description: "Luxury SUV with air suspension and panoramic roof."},
	{Make: "Mercedes-Benz", Model: "C300", Year: 2022, Price: 43200, Mileage: 15000, Style: "sedan", FuelType: "petrol", Description: "AMG line trim, burmester audio, still under warranty."},
	{Make: "Hyundai", Model: "Tucson", Year: 2023, Price: 27400, Mileage: 9000, Style: "suv", FuelType: "hybrid", Description: "Hybrid SUV with a long factory warranty and modern cabin."},
	{Make: "Kia", Model: "Sportage", Year: 2022, Price: 25900, Mileage: 19000, Style: "suv", FuelType: "petrol", Description: "Well equipped mid-size SUV, single owner, accident free."},
	{Make: "Volkswagen", Model: "Golf", Year: 2021, Price: 22400, Mileage: 26000, Style: "hatchback", FuelType: "petrol", Description: "Practical hatch with adaptive cruise and lane assist."},
	{Make: "Nissan", Model: "Leaf", Year: 2021, Price: 18900, Mileage: 22000, Style: "hatchback", FuelType: "electric", Description: "Affordable EV commuter, new battery health report included."},
}
