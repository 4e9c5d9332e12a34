package menu

// Default returns the built-in snack counter catalog.
//
// Prices are in the minor currency unit. The "special" category is
// treated as high value for dashboard visibility.
func Default() *Catalog {
	c, err := New([]Item{
		{Name: "Samosa", Price: 20, Category: "snack", Aliases: []string{"aloo samosa", "samose"}},
		{Name: "Kachori", Price: 25, Category: "snack", Aliases: []string{"pyaaz kachori", "onion kachori", "kachauri"}},
		{Name: "Mirchi Vada", Price: 30, Category: "snack", Aliases: []string{"mirchi bada", "chilli vada", "mirchi pakora"}},
		{Name: "Dhokla", Price: 40, Category: "snack", Aliases: []string{"khaman", "khaman dhokla"}},
		{Name: "Kathi Roll", Price: 80, Category: "snack", Aliases: []string{"paneer roll", "veg roll"}},
		{Name: "Jalebi", Price: 50, Category: "sweet", Aliases: []string{"jilebi", "jalebi plate"}},
		{Name: "Gulab Jamun", Price: 60, Category: "sweet", Aliases: []string{"jamun"}},
		{Name: "Rasgulla", Price: 55, Category: "sweet", Aliases: []string{"rosogolla"}},
		{Name: "Masala Chai", Price: 15, Category: "beverage", Aliases: []string{"chai", "tea", "cutting chai"}},
		{Name: "Lassi", Price: 45, Category: "beverage", Aliases: []string{"sweet lassi", "namkeen lassi"}},
		{Name: "Nimbu Pani", Price: 20, Category: "beverage", Aliases: []string{"lemonade", "shikanji"}},
		{Name: "Special Thali", Price: 250, Category: "special", Aliases: []string{"thali", "full thali"}},
		{Name: "Party Pack", Price: 500, Category: "special", Aliases: []string{"party box", "celebration pack"}},
	}, "special")
	if err != nil {
		panic(err)
	}
	return c
}
