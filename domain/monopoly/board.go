package monopoly

func street(name string, value int, rent [6]int, houseCost, set int) Square {
	return Square{
		Type:      SquareStreet,
		Name:      name,
		Value:     value,
		Rent:      rent[:],
		HouseCost: houseCost,
		Set:       set,
	}
}

func rail(name string) Square {
	return Square{Type: SquareRail, Name: name, Value: 200}
}

func utility(name string) Square {
	return Square{Type: SquareUtility, Name: name, Value: 150}
}

func tax(name string, amount int) Square {
	return Square{Type: SquareTax, Name: name, Value: amount}
}

func plain(t SquareType, name string) Square {
	return Square{Type: t, Name: name}
}

// NewBoard returns the standard 40 square board with every property unowned.
func NewBoard() []Square {
	return []Square{
		plain(SquareGo, "Go"),
		street("Mediterranean Avenue", 60, [6]int{2, 10, 30, 90, 160, 250}, 50, 1),
		plain(SquareCommunityChest, "Community Chest"),
		street("Baltic Avenue", 60, [6]int{4, 20, 60, 180, 320, 450}, 50, 1),
		tax("Income Tax", 200),
		rail("Reading Railroad"),
		street("Oriental Avenue", 100, [6]int{6, 30, 90, 270, 400, 550}, 50, 2),
		plain(SquareChance, "Chance"),
		street("Vermont Avenue", 100, [6]int{6, 30, 90, 270, 400, 550}, 50, 2),
		street("Connecticut Avenue", 120, [6]int{8, 40, 100, 300, 450, 600}, 50, 2),

		plain(SquareJail, "Jail"),
		street("St. Charles Place", 140, [6]int{10, 50, 150, 450, 625, 750}, 100, 3),
		utility("Electric Company"),
		street("States Avenue", 140, [6]int{10, 50, 150, 450, 625, 750}, 100, 3),
		street("Virginia Avenue", 160, [6]int{12, 60, 180, 500, 700, 900}, 100, 3),
		rail("Pennsylvania Railroad"),
		street("St. James Place", 180, [6]int{14, 70, 200, 550, 750, 950}, 100, 4),
		plain(SquareCommunityChest, "Community Chest"),
		street("Tennessee Avenue", 180, [6]int{14, 70, 200, 550, 750, 950}, 100, 4),
		street("New York Avenue", 200, [6]int{16, 80, 220, 600, 800, 1000}, 100, 4),

		plain(SquareFreeParking, "Free Parking"),
		street("Kentucky Avenue", 220, [6]int{18, 90, 250, 700, 875, 1050}, 150, 5),
		plain(SquareChance, "Chance"),
		street("Indiana Avenue", 220, [6]int{18, 90, 250, 700, 875, 1050}, 150, 5),
		street("Illinois Avenue", 240, [6]int{20, 100, 300, 750, 925, 1100}, 150, 5),
		rail("B&O Railroad"),
		street("Atlantic Avenue", 260, [6]int{22, 110, 330, 800, 975, 1150}, 150, 6),
		street("Ventnor Avenue", 260, [6]int{22, 110, 330, 800, 975, 1150}, 150, 6),
		utility("Water Works"),
		street("Marvin Gardens", 280, [6]int{24, 120, 360, 850, 1025, 1200}, 150, 6),

		plain(SquareGoToJail, "Go To Jail"),
		street("Pacific Avenue", 300, [6]int{26, 130, 390, 900, 1100, 1275}, 200, 7),
		street("North Carolina Avenue", 300, [6]int{26, 130, 390, 900, 1100, 1275}, 200, 7),
		plain(SquareCommunityChest, "Community Chest"),
		street("Pennsylvania Avenue", 320, [6]int{28, 150, 450, 1000, 1200, 1400}, 200, 7),
		rail("Short Line"),
		plain(SquareChance, "Chance"),
		street("Park Place", 350, [6]int{35, 175, 500, 1100, 1300, 1500}, 200, 8),
		tax("Luxury Tax", 100),
		street("Boardwalk", 400, [6]int{50, 200, 600, 1400, 1700, 2000}, 200, 8),
	}
}
